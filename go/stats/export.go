/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stats is a wrapper for expvar. It additionally
// exports new types that can be used to track performance.
// Variables are published by name and every registered
// NewVarHook is told about them, which is how a backend such
// as prometheusbackend picks them up.
package stats

import (
	"expvar"
	"sync"
)

// Variable is the minimal interface which each type in this "stats" package
// must implement.
type Variable interface {
	expvar.Var
	// Help returns the description of the variable.
	Help() string
}

// NewVarHook is the type of a hook to export variables in a different way
type NewVarHook func(name string, v Variable)

type varGroup struct {
	sync.Mutex
	vars       map[string]Variable
	newVarHook []NewVarHook
}

func (vg *varGroup) register(nvh NewVarHook) {
	vg.Lock()
	defer vg.Unlock()
	vg.newVarHook = append(vg.newVarHook, nvh)
	for k, v := range vg.vars {
		nvh(k, v)
	}
}

func (vg *varGroup) publish(name string, v Variable) {
	vg.Lock()
	defer vg.Unlock()

	if _, ok := vg.vars[name]; ok {
		panic("stats: reuse of exported var name: " + name)
	}
	expvar.Publish(name, v)
	vg.vars[name] = v
	for _, hook := range vg.newVarHook {
		hook(name, v)
	}
}

var defaultVarGroup = varGroup{vars: make(map[string]Variable)}

// Register allows you to register a callback function
// that will be called whenever a new stats variable gets
// created. Variables published before the call are replayed
// to nvh right away.
func Register(nvh NewVarHook) {
	defaultVarGroup.register(nvh)
}

// Publish is expvar.Publish+hook
func Publish(name string, v Variable) {
	publish(name, v)
}

func publish(name string, v Variable) {
	defaultVarGroup.publish(name, v)
}
