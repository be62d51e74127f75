// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ava-labs/avalanchego/utils/rpc"
)

// EndpointRequester attaches a service name to each JSON-RPC request sent to
// a single endpoint.
type EndpointRequester struct {
	uri  string
	base string
}

func New(uri, base string) *EndpointRequester {
	return &EndpointRequester{uri: uri, base: base}
}

func (e *EndpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
	options ...rpc.Option,
) error {
	uri, err := url.Parse(e.uri)
	if err != nil {
		return err
	}
	return rpc.SendJSONRequest(
		ctx,
		uri,
		fmt.Sprintf("%s.%s", e.base, method),
		params,
		reply,
		options...,
	)
}
