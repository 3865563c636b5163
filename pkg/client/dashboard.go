package client

import (
	"context"
	"net/url"
)

// Selection is a (state, year) pair.
type Selection struct {
	State string `json:"state"`
	Year  string `json:"year"`
}

// Options lists the selectable states and years.
type Options struct {
	States  []string  `json:"states"`
	Years   []string  `json:"years"`
	Default Selection `json:"default"`
}

// Point is a vector endpoint in (equity, security, environmental) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Readout is one angle line.  Degrees is nil when the angle is undefined and
// Value then carries the placeholder.
type Readout struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Value     string   `json:"value"`
	Degrees   *float64 `json:"degrees"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
}

// ReadoutGroup is a headed block of readouts.
type ReadoutGroup struct {
	Heading  string    `json:"heading,omitempty"`
	Readouts []Readout `json:"readouts"`
}

// View is the computed dashboard view of one selection.
type View struct {
	Selection Selection      `json:"selection"`
	Title     string         `json:"title"`
	Generic   Point          `json:"generic"`
	Ideal     Point          `json:"ideal"`
	Groups    []ReadoutGroup `json:"groups"`
}

// ComponentHealth is the health result of one dependency.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Health is the /healthz/detail body.
type Health struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Options fetches the selector choices.
func (c *Client) Options(ctx context.Context) (*Options, error) {
	var out Options
	if err := c.getJSON(ctx, "/api/v1/options", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// View computes the view of (state, year).  An unknown selection yields an
// *APIError for which IsNotFound is true.
func (c *Client) View(ctx context.Context, state, year string) (*View, error) {
	var out View
	if err := c.getJSON(ctx, "/api/v1/view", selectionQuery(state, year), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chart fetches the embeddable chart HTML of (state, year).
func (c *Client) Chart(ctx context.Context, state, year string) (string, error) {
	body, err := c.get(ctx, "/api/v1/chart", selectionQuery(state, year))
	return string(body), err
}

// Health fetches the detailed health report.  A degraded server answers 503,
// which surfaces as an *APIError after the retries are spent.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/healthz/detail", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func selectionQuery(state, year string) url.Values {
	q := url.Values{}
	q.Set("state", state)
	q.Set("year", year)
	return q
}

//Personal.AI order the ending
