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

package portal

import "vitess.io/distexchange/go/sqltypes"

// Receiver accepts the rows a portal fetches.
type Receiver interface {
	Receive(row sqltypes.Row) error
}

// ReceiverFunc adapts a function to a Receiver.
type ReceiverFunc func(row sqltypes.Row) error

// Receive is part of the Receiver interface.
func (f ReceiverFunc) Receive(row sqltypes.Row) error {
	return f(row)
}

// RowBuffer collects the rows it receives.
type RowBuffer struct {
	Rows []sqltypes.Row
}

// Receive is part of the Receiver interface.
func (b *RowBuffer) Receive(row sqltypes.Row) error {
	b.Rows = append(b.Rows, row)
	return nil
}
