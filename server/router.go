// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

var errDuplicateEndpoint = errors.New("duplicate endpoint")

// router mounts handlers at [base + endpoint]. Routes may be added while the
// server is live.
type router struct {
	lock   sync.RWMutex
	router *mux.Router

	// base -> endpoint -> handler
	routes map[string]map[string]http.Handler
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
		routes: make(map[string]map[string]http.Handler),
	}
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(w, req)
}

func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	endpoints := r.routes[base]
	if endpoints == nil {
		endpoints = make(map[string]http.Handler)
		r.routes[base] = endpoints
	}
	url := base + endpoint
	if _, exists := endpoints[endpoint]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEndpoint, url)
	}
	endpoints[endpoint] = handler

	// Name routes by their URL for later retrieval.
	route := r.router.Handle(url, handler)
	if route == nil {
		return fmt.Errorf("failed to create route for %s", url)
	}
	route.Name(url)
	return nil
}
