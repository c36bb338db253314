package nitro

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/biola/nagios-plugins/pkg/convert"
	"github.com/goccy/go-json"
)

var (
	// ErrEmptyResponse is returned if a stat resource contains no entries.
	ErrEmptyResponse = errors.New("no entries returned")

	// ErrVServerNotFound is returned if the lbvserver lookup returned nothing.
	ErrVServerNotFound = errors.New("vserver not found")
)

// Value is a numeric field as sent by the appliance. NITRO encodes most
// counters as JSON strings, some firmware versions send plain numbers.
type Value string

// UnmarshalJSON accepts strings, numbers and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = Value(str)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("expected string or number, got: %s", data)
		}
		*v = Value(num.String())
	}

	return nil
}

// String returns the raw text.
func (v Value) String() string {
	return string(v)
}

// Int64 returns the leading integer of the value. Malformed values are
// logged and coerced to whatever leading digits they have, 0 otherwise.
func (v Value) Int64(field string) int64 {
	num, ok := convert.Int64Loose(string(v))
	if !ok {
		log.Warnf("%s: malformed numeric value %q, using %d", field, string(v), num)
	}

	return num
}

// SystemCPU is a single entry of stat/systemcpu.
type SystemCPU struct {
	ID        Value `json:"id"`
	PerCPUUse Value `json:"percpuuse"`
}

// SystemMemory is stat/systemmemory.
type SystemMemory struct {
	MemUsagePcnt Value `json:"memusagepcnt"`
}

// HANode is stat/hanode.
type HANode struct {
	HACurStatus      string `json:"hacurstatus"`
	HACurState       string `json:"hacurstate"`
	HACurMasterState string `json:"hacurmasterstate"`
	TransTime        string `json:"transtime"`
}

// Configured returns true if high availability is set up on this node.
func (h *HANode) Configured() bool {
	return h.HACurStatus == "YES"
}

// Up returns true if the node is in a healthy ha state.
func (h *HANode) Up() bool {
	return h.HACurState == "UP"
}

// LBVServer is a single entry of stat/lbvserver.
type LBVServer struct {
	Name       string `json:"name"`
	VSLBHealth Value  `json:"vslbhealth"`
	State      string `json:"state"`
}

// systemCPUResponse, systemMemoryResponse, haNodeResponse and lbVServerResponse
// wrap the documents the way the appliance returns them.
type systemCPUResponse struct {
	SystemCPU []SystemCPU `json:"systemcpu"`
}

type systemMemoryResponse struct {
	SystemMemory *SystemMemory `json:"systemmemory"`
}

type haNodeResponse struct {
	HANode *HANode `json:"hanode"`
}

type lbVServerResponse struct {
	LBVServer []LBVServer `json:"lbvserver"`
}

// SystemCPUs fetches per core cpu usage in table order. An empty table is not an error.
func (s *Session) SystemCPUs(ctx context.Context) ([]SystemCPU, error) {
	var resp systemCPUResponse
	if err := s.GetJSON(ctx, "stat/systemcpu", &resp); err != nil {
		return nil, err
	}
	return resp.SystemCPU, nil
}

// SystemMemory fetches memory usage.
func (s *Session) SystemMemory(ctx context.Context) (*SystemMemory, error) {
	var resp systemMemoryResponse
	if err := s.GetJSON(ctx, "stat/systemmemory", &resp); err != nil {
		return nil, err
	}
	if resp.SystemMemory == nil {
		return nil, fmt.Errorf("stat/systemmemory: %w", ErrEmptyResponse)
	}

	return resp.SystemMemory, nil
}

// HANode fetches the high availability state of this node.
func (s *Session) HANode(ctx context.Context) (*HANode, error) {
	var resp haNodeResponse
	if err := s.GetJSON(ctx, "stat/hanode", &resp); err != nil {
		return nil, err
	}
	if resp.HANode == nil {
		return nil, fmt.Errorf("stat/hanode: %w", ErrEmptyResponse)
	}

	return resp.HANode, nil
}

// LBVServer fetches the statistics of a single load balancing vserver.
func (s *Session) LBVServer(ctx context.Context, name string) (*LBVServer, error) {
	var resp lbVServerResponse
	if err := s.GetJSON(ctx, "stat/lbvserver/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	if len(resp.LBVServer) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrVServerNotFound)
	}

	return &resp.LBVServer[0], nil
}
