// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, bytes.TrimSpace(responseBody), ErrNot200Status)
	}
	return responseBody, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpDELETE(url string) ([]byte, error) {
	return c.httpRequest(http.MethodDelete, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}

	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}

// RawHTTPGet sends a GET request for the given path and returns the raw
// response body and status code.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}

// RawHTTPPost sends a POST request for the given path with the provided
// payload and returns the raw response body and status code.
func (c *Client) RawHTTPPost(path string, payload any) ([]byte, int, error) {
	var data []byte
	var err error

	if raw, ok := payload.([]byte); ok {
		data = raw
	} else {
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to marshal payload - %w", err)
		}
	}

	return c.rawHTTPRequest(http.MethodPost, c.url+path, bytes.NewBuffer(data))
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return responseBody, resp.StatusCode, nil
}
