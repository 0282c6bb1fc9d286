// Package logging adapts zap to the authcore.Logger interface.
package logging

import "go.uber.org/zap"

// Zap wraps a zap.SugaredLogger.
type Zap struct {
	s *zap.SugaredLogger
}

// NewZap wraps the given logger. A nil logger yields a no-op adapter.
func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.NewNop()
	}
	return &Zap{s: l.Sugar()}
}

func (z *Zap) Info(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z *Zap) Warn(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z *Zap) Error(msg string, kv ...any) { z.s.Errorw(msg, kv...) }
