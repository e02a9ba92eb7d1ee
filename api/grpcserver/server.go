package grpcserver

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kestrel/api/pb"
	"kestrel/domain/book"
	"kestrel/domain/perps"
	"kestrel/service"
)

// Server adapts the Exchange to gRPC. The core is single-writer, so
// every call funnels through one edge mutex, shared with any other
// ingress (the oracle loop); a token bucket sheds load before it
// reaches the matching thread.
type Server struct {
	pb.UnimplementedEngineServer

	mu      *sync.Mutex
	svc     *service.Exchange
	limiter *rate.Limiter
}

func New(svc *service.Exchange, mu *sync.Mutex, perSecond float64, burst int) *Server {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Server{
		mu:      mu,
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// -------------------- Commands --------------------

func (s *Server) PlaceOrder(ctx context.Context, req *pb.PlaceOrderRequest) (*pb.PlaceOrderResponse, error) {
	if !s.limiter.Allow() {
		return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
	}

	s.mu.Lock()
	trades, err := s.svc.PlaceOrder(req.Trader, book.Side(req.Side), req.Price, req.Qty, req.Id)
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &pb.PlaceOrderResponse{Trades: make([]*pb.Trade, 0, len(trades))}
	for _, t := range trades {
		resp.Trades = append(resp.Trades, toTrade(t))
	}
	return resp, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *pb.CancelOrderRequest) (*pb.CancelOrderResponse, error) {
	s.mu.Lock()
	found := s.svc.CancelOrder(req.Id)
	s.mu.Unlock()

	return &pb.CancelOrderResponse{Found: found}, nil
}

func (s *Server) OpenPosition(ctx context.Context, req *pb.OpenPositionRequest) (*pb.OpenPositionResponse, error) {
	if !s.limiter.Allow() {
		return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
	}

	s.mu.Lock()
	p, err := s.svc.OpenPosition(req.Trader, perps.PositionSide(req.Side), req.Size, req.Leverage)
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.OpenPositionResponse{Position: toPosition(p)}, nil
}

func (s *Server) Tick(ctx context.Context, req *pb.TickRequest) (*pb.TickResponse, error) {
	s.mu.Lock()
	ev := s.svc.Tick(perps.Sample{Index: req.Index, Confidence: req.Confidence, At: req.At})
	s.mu.Unlock()

	return &pb.TickResponse{
		Skipped:        ev.Skipped,
		Mark:           ev.Mark,
		Fair:           ev.Fair,
		Index:          ev.Index,
		Basis:          ev.Basis,
		FundingApplied: ev.FundingApplied,
		FundingRate:    ev.FundingRate,
		Liquidations:   int32(len(ev.Liquidations)),
		SocializedLoss: ev.SocializedLoss,
	}, nil
}

// -------------------- Queries --------------------

func (s *Server) Depth(ctx context.Context, req *pb.DepthRequest) (*pb.DepthResponse, error) {
	s.mu.Lock()
	levels := s.svc.Depth(book.Side(req.Side), int(req.MaxLevels))
	s.mu.Unlock()

	resp := &pb.DepthResponse{Levels: make([]*pb.DepthLevel, 0, len(levels))}
	for _, lvl := range levels {
		resp.Levels = append(resp.Levels, &pb.DepthLevel{Price: lvl.Price, Qty: lvl.Qty})
	}
	return resp, nil
}

// -------------------- mapping --------------------

func toTrade(t book.Trade) *pb.Trade {
	return &pb.Trade{
		MakerId: t.MakerID,
		TakerId: t.TakerID,
		Price:   t.Price,
		Qty:     t.Qty,
		Seq:     t.Seq,
		At:      t.At,
	}
}

func toPosition(p *perps.Position) *pb.PositionInfo {
	return &pb.PositionInfo{
		Trader:           p.Trader,
		Side:             int32(p.Side),
		Size:             p.Size,
		Entry:            p.Entry,
		Margin:           p.Margin,
		Leverage:         p.Leverage,
		UnrealizedPnl:    p.UnrealizedPnL,
		LiquidationPrice: p.LiquidationPrice,
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, book.ErrInvalidOrder), errors.Is(err, perps.ErrInvalidLeverage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, book.ErrDuplicateOrderID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, book.ErrUnknownOrder), errors.Is(err, perps.ErrUnknownPosition):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, perps.ErrInsufficientMargin), errors.Is(err, service.ErrNoLiquidity):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
