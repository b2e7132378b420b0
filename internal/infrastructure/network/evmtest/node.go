// Package evmtest provides an in-memory contract caller that answers eth_call
// with ABI-encoded fixtures. It is meant for tests only.
package evmtest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/network/abis"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrTransport is returned by a node told to fail at the transport level.
var ErrTransport = errors.New("dial tcp: connection refused")

// RevertError mimics the JSON-RPC error a node returns for a reverted call.
type RevertError struct{}

func (RevertError) Error() string          { return "execution reverted" }
func (RevertError) ErrorCode() int         { return 3 }
func (RevertError) ErrorData() interface{} { return "0x" }

// Handler answers the call data that follows the selector.
type Handler func(input []byte) ([]byte, error)

// Node is a fake JSON-RPC node.
type Node struct {
	mu            sync.Mutex
	handlers      map[string]Handler
	calls         int
	transportFail int
	block         chan struct{}
}

func NewNode() *Node {
	return &Node{handlers: make(map[string]Handler)}
}

func handlerKey(to common.Address, selector []byte) string {
	return strings.ToLower(to.Hex()) + ":" + hex.EncodeToString(selector)
}

// Handle registers h for calls of method on to.
func (n *Node) Handle(to common.Address, method abi.Method, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[handlerKey(to, method.ID)] = h
}

// Return registers a fixed response made of the packed output values.
func (n *Node) Return(tb testing.TB, to common.Address, contract abi.ABI, method string, values ...interface{}) {
	tb.Helper()
	m, ok := contract.Methods[method]
	if !ok {
		tb.Fatalf("unknown method %s", method)
	}
	packed, err := m.Outputs.Pack(values...)
	if err != nil {
		tb.Fatalf("pack %s outputs: %v", method, err)
	}
	n.Handle(to, m, func([]byte) ([]byte, error) { return packed, nil })
}

// Revert makes method on to revert.
func (n *Node) Revert(to common.Address, contract abi.ABI, method string) {
	n.Handle(to, contract.Methods[method], func([]byte) ([]byte, error) { return nil, RevertError{} })
}

// FailTransport makes the next times calls fail with ErrTransport. A
// negative value fails every call.
func (n *Node) FailTransport(times int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transportFail = times
}

// Block makes every call wait until the context is done.
func (n *Node) Block() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.block = make(chan struct{})
}

// Calls returns the number of CallContract invocations.
func (n *Node) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// EnableMulticall installs an aggregate3 handler at addr that dispatches each
// inner call to the node's own handlers.
func (n *Node) EnableMulticall(addr common.Address) {
	mc := abis.Get().Multicall3
	method := mc.Methods[abis.MethodAggregate3]
	n.Handle(addr, method, func(input []byte) ([]byte, error) {
		args, err := method.Inputs.Unpack(input)
		if err != nil {
			return nil, err
		}
		calls, err := abis.Convert[[]abis.Call3](args[0])
		if err != nil {
			return nil, err
		}
		results := make([]abis.Multicall3Result, len(calls))
		for i, c := range calls {
			out, err := n.dispatch(c.Target, c.CallData)
			if err != nil {
				if !c.AllowFailure {
					return nil, RevertError{}
				}
				results[i] = abis.Multicall3Result{Success: false, ReturnData: []byte{}}
				continue
			}
			results[i] = abis.Multicall3Result{Success: true, ReturnData: out}
		}
		return method.Outputs.Pack(results)
	})
}

func (n *Node) dispatch(to common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, RevertError{}
	}
	n.mu.Lock()
	h, ok := n.handlers[handlerKey(to, data[:4])]
	n.mu.Unlock()
	if !ok {
		return nil, RevertError{}
	}
	return h(data[4:])
}

// CallContract implements port.ContractCaller.
func (n *Node) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	n.mu.Lock()
	n.calls++
	block := n.block
	fail := n.transportFail != 0
	if n.transportFail > 0 {
		n.transportFail--
	}
	n.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}
	if fail {
		return nil, ErrTransport
	}
	if msg.To == nil {
		return nil, RevertError{}
	}
	return n.dispatch(*msg.To, msg.Data)
}

// Callers maps RPC URLs to nodes. Unknown URLs fail to dial.
type Callers map[string]*Node

func (c Callers) GetCaller(_ context.Context, rpcURL string) (port.ContractCaller, error) {
	node, ok := c[rpcURL]
	if !ok {
		return nil, fmt.Errorf("%w: cannot dial %s", entity.ErrRPCUnavailable, rpcURL)
	}
	return node, nil
}

// Resolver returns the same endpoints for every chain.
type Resolver struct {
	URLs []string
}

func (r Resolver) GetEndpoint(_ context.Context, _ entity.Chain) (string, error) {
	if len(r.URLs) == 0 {
		return "", fmt.Errorf("%w: no endpoints", entity.ErrRPCUnavailable)
	}
	return r.URLs[0], nil
}

func (r Resolver) Endpoints(_ context.Context, _ entity.Chain) ([]string, error) {
	return r.URLs, nil
}
