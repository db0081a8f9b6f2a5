package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds every schedulerctl call. Scheduling endpoints may
// touch the remote calendar several times, so this is generous.
const requestTimeout = 30 * time.Second

var httpClient = &http.Client{}

// apiError mirrors the failure envelope the scheduler service writes.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// failure turns a non-2xx response into a readable CLI error, preferring
// the service's envelope over the raw body.
func failure(status int, body []byte) error {
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("%s: %s", e.Error, e.Message)
		}
		return fmt.Errorf("%s", e.Error)
	}
	return fmt.Errorf("http %d: %s", status, bytes.TrimSpace(body))
}

func call(method, url string, payload interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, failure(resp.StatusCode, data)
	}
	return data, nil
}

func doGet(url string) ([]byte, error) {
	return call(http.MethodGet, url, nil)
}

func doPostJSON(url string, payload interface{}) ([]byte, error) {
	return call(http.MethodPost, url, payload)
}

func doDelete(url string) error {
	_, err := call(http.MethodDelete, url, nil)
	return err
}
