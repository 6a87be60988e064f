package logger

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// remoteSendTimeout は1件のリモート送信に許容する時間。
const remoteSendTimeout = 5 * time.Second

// remoteSink はログエントリをHTTP POSTで外部エンドポイントへ送る。
// 送信は呼び出し元をブロックしない。
type remoteSink struct {
	client   *http.Client
	inflight sync.WaitGroup
}

func newRemoteSink() *remoteSink {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 3 * time.Second,
	}
	return &remoteSink{
		client: &http.Client{Timeout: remoteSendTimeout, Transport: tr},
	}
}

// send はエントリをバックグラウンドで送信する。失敗時はonErrorを呼ぶ。
func (s *remoteSink) send(endpoint string, e Entry, onError func(error)) {
	body := e.marshal()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.post(endpoint, body); err != nil {
			onError(err)
		}
	}()
}

func (s *remoteSink) post(endpoint string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), remoteSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create remote log request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send remote log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("remote log endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *remoteSink) wait() {
	s.inflight.Wait()
}
