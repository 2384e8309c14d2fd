package services

import (
	"context"
	"sync"

	"github.com/biofert/core/internal/ports"
)

type fakeImageHost struct {
	mu     sync.Mutex
	assets []ports.Asset
	err    error
}

func (h *fakeImageHost) Upload(ctx context.Context, asset ports.Asset) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return "", h.err
	}
	h.assets = append(h.assets, asset)
	return "https://cdn.test/" + asset.Folder + "/" + asset.Name, nil
}

func (h *fakeImageHost) uploaded() []ports.Asset {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ports.Asset(nil), h.assets...)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func strPtr(s string) *string {
	return &s
}
