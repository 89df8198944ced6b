// Package daemon serves the glide control protocol over the local IPC
// socket: history queries, pin/delete/clear actions, re-copy, and a live
// watch stream.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/dagimg-dot/Glide/internal/blob"
	"github.com/dagimg-dot/Glide/internal/capture"
	"github.com/dagimg-dot/Glide/internal/clip"
	"github.com/dagimg-dot/Glide/internal/entry"
	"github.com/dagimg-dot/Glide/internal/history"
	"github.com/dagimg-dot/Glide/internal/message"
	"github.com/dagimg-dot/Glide/internal/wire"
)

// Server executes control requests against the history store.
type Server struct {
	store   *history.Store
	coord   *capture.Coordinator
	sink    blob.Sink
	backend clip.Backend
}

// New returns a control server.
func New(store *history.Store, coord *capture.Coordinator, sink blob.Sink, backend clip.Backend) *Server {
	return &Server{store: store, coord: coord, sink: sink, backend: backend}
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	for {
		req, err := wc.ReadMsg()
		if err != nil {
			return // client hung up
		}

		switch req.Type {
		case message.TypeList:
			s.replyHistory(ctx, wc)

		case message.TypeWatch:
			s.streamWatch(ctx, wc)
			return

		case message.TypePin:
			s.replyErrOrOK(wc, s.store.TogglePin(ctx, req.ID))

		case message.TypeDelete:
			s.replyErrOrOK(wc, s.store.Delete(ctx, req.ID))

		case message.TypeClear:
			s.replyErrOrOK(wc, s.store.ClearUnpinned(ctx))

		case message.TypeCopy:
			s.replyErrOrOK(wc, s.copyToClipboard(ctx, req.ID))

		default:
			s.writeErr(wc, fmt.Sprintf("unknown request type %q", req.Type))
			return
		}
	}
}

// copyToClipboard places an entry's content back on the system clipboard,
// marking it with the coordinator first so neither capture source records
// our own write as a new copy.
func (s *Server) copyToClipboard(ctx context.Context, id string) error {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if e == nil {
		return history.ErrNotFound
	}

	switch {
	case e.IsText():
		text := e.Text()
		s.coord.MarkSelfCopy(entry.FingerprintText(text))
		return s.backend.WriteText(text)
	case e.IsImage():
		data, err := s.sink.Open(e.BlobRef())
		if err != nil {
			return fmt.Errorf("open blob: %w", err)
		}
		// The blob ref is the content fingerprint of the bytes.
		s.coord.MarkSelfCopy(e.BlobRef())
		return s.backend.WriteImage(data)
	}
	return errors.New("entry has no content")
}

// streamWatch pushes a HISTORY message for every store mutation until the
// client disconnects or ctx ends. Holding the subscription open is what
// keeps the view live; closing it on exit is what keeps the store's
// subscriber set from leaking.
func (s *Server) streamWatch(ctx context.Context, wc *wire.Conn) {
	sub := s.store.Observe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := wc.WriteMsg(s.historyMsg(snap)); err != nil {
				return
			}
		}
	}
}

func (s *Server) replyHistory(ctx context.Context, wc *wire.Conn) {
	snap, err := s.store.List(ctx)
	if err != nil {
		s.writeErr(wc, err.Error())
		return
	}
	if err := wc.WriteMsg(s.historyMsg(snap)); err != nil {
		slog.Warn("history reply failed", "err", err)
	}
}

func (s *Server) historyMsg(snap []*entry.Entry) *message.Message {
	views := make([]message.EntryView, 0, len(snap))
	for _, e := range snap {
		views = append(views, message.ViewOf(e, s.store.PreviewLength()))
	}
	return &message.Message{Type: message.TypeHistory, Entries: views}
}

func (s *Server) replyErrOrOK(wc *wire.Conn, err error) {
	if err != nil {
		s.writeErr(wc, err.Error())
		return
	}
	if werr := wc.WriteMsg(&message.Message{Type: message.TypeOK}); werr != nil {
		slog.Warn("ok reply failed", "err", werr)
	}
}

func (s *Server) writeErr(wc *wire.Conn, msg string) {
	if err := wc.WriteMsg(&message.Message{Type: message.TypeError, Error: msg}); err != nil {
		slog.Warn("error reply failed", "err", err)
	}
}
