package smtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// plainServer имитирует SMTP сервер без STARTTLS: отвечает на приветствие и EHLO.
func plainServer(t *testing.T) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		fmt.Fprint(conn, "220 localhost ESMTP test\r\n")
		if _, err := r.ReadString('\n'); err != nil {
			return
		}
		fmt.Fprint(conn, "250-localhost\r\n250 HELP\r\n")
		_, _ = r.ReadString('\n')
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestTransport_Connect_NoStartTLS(t *testing.T) {
	host, port := plainServer(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, discardLogger())

	client, err := tr.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStartTLS)
	assert.Nil(t, client)
}

func TestTransport_Connect_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, discardLogger())
	_, err = tr.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial SMTP server")
}

func TestTransport_From(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SMTP
		want string
	}{
		{name: "explicit from", cfg: config.SMTP{SMTPFrom: "noreply@example.com", SMTPUser: "user"}, want: "noreply@example.com"},
		{name: "falls back to user", cfg: config.SMTP{SMTPUser: "user@example.com"}, want: "user@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTransport(tt.cfg, discardLogger()).From())
		})
	}
}
