package bot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"lexol/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// --- store ---

type fakeStore struct {
	mu       sync.Mutex
	bindings map[string]domain.Binding
	getErr   error
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bindings: make(map[string]domain.Binding)}
}

func (s *fakeStore) Get(ctx context.Context, guildID string) (*domain.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	b, ok := s.bindings[guildID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *fakeStore) Create(ctx context.Context, b domain.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.bindings[b.GuildID]; ok {
		return domain.ErrAlreadyBound
	}
	s.bindings[b.GuildID] = b
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, guildID)
	return nil
}

// --- gateway ---

type completeCall struct {
	model  domain.Model
	prompt string
}

type fakeGateway struct {
	mu            sync.Mutex
	completeCalls []completeCall
	completeText  string
	completeErr   error
	completeDelay time.Duration
	captionCalls  int
	captionText   string
	captionErr    error
	generateCalls int
	generateData  []byte
	generateErr   error
}

func (g *fakeGateway) Complete(ctx context.Context, model domain.Model, prompt string) (string, error) {
	if g.completeDelay > 0 {
		time.Sleep(g.completeDelay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completeCalls = append(g.completeCalls, completeCall{model: model, prompt: prompt})
	if g.completeErr != nil {
		return "", g.completeErr
	}
	return g.completeText, nil
}

func (g *fakeGateway) Caption(ctx context.Context, image []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captionCalls++
	if g.captionErr != nil {
		return "", g.captionErr
	}
	return g.captionText, nil
}

func (g *fakeGateway) Generate(ctx context.Context, model domain.ImageModel, prompt string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateCalls++
	if g.generateErr != nil {
		return nil, g.generateErr
	}
	return g.generateData, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.completeCalls) + g.captionCalls + g.generateCalls
}

// --- platform ---

type sentReply struct {
	ref     domain.ReplyRef
	content string
}

type sentFile struct {
	ref      domain.ReplyRef
	filename string
	content  string
}

type slowmodeCall struct {
	channelID string
	seconds   int
}

type createdChannel struct {
	guildID  string
	name     string
	slowmode int
}

type fakePlatform struct {
	mu        sync.Mutex
	replies   []sentReply
	files     []sentFile
	slowmodes []slowmodeCall
	created   []createdChannel
	deleted   []string
	typings   int

	nextChannelID string
	createErr     error
	deleteErr     error
	replyErr      error
}

func (p *fakePlatform) Reply(ctx context.Context, ref domain.ReplyRef, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.replyErr != nil {
		return p.replyErr
	}
	p.replies = append(p.replies, sentReply{ref: ref, content: content})
	return nil
}

func (p *fakePlatform) ReplyFile(ctx context.Context, ref domain.ReplyRef, filename string, r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, _ := io.ReadAll(r)
	p.files = append(p.files, sentFile{ref: ref, filename: filename, content: string(data)})
	return nil
}

func (p *fakePlatform) SetSlowmode(ctx context.Context, channelID string, seconds int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slowmodes = append(p.slowmodes, slowmodeCall{channelID: channelID, seconds: seconds})
	return nil
}

func (p *fakePlatform) Typing(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typings++
	return nil
}

func (p *fakePlatform) typingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typings
}

func (p *fakePlatform) CreateTextChannel(ctx context.Context, guildID, name string, slowmodeSeconds int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	id := p.nextChannelID
	if id == "" {
		id = "chan-1"
	}
	p.created = append(p.created, createdChannel{guildID: guildID, name: name, slowmode: slowmodeSeconds})
	return id, nil
}

func (p *fakePlatform) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, channelID)
	return nil
}

// --- fetcher ---

type fakeFetcher struct {
	mu   sync.Mutex
	urls []string
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}
