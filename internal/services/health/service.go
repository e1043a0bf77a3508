package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB          Pinger
	DOCDecoder  bool
	PingTimeout time.Duration
}

// Report is the /health payload. OK is false only when a configured database is unreachable.
type Report struct {
	OK         bool   `json:"ok"`
	Database   string `json:"database"`
	DOCDecoder bool   `json:"docDecoder"`
}

func NewService(db Pinger, docDecoder bool) *Service {
	return &Service{DB: db, DOCDecoder: docDecoder, PingTimeout: 2 * time.Second}
}

// Status reports whether the service can serve requests.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{OK: true, Database: "memory", DOCDecoder: s.DOCDecoder}
	if s.DB == nil {
		return r
	}
	timeout := s.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		r.OK = false
		r.Database = "down"
		return r
	}
	r.Database = "ok"
	return r
}
