// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cerr defines a string type usable as a constant error, so that
// sentinel errors can be declared with const and compared with errors.Is.
package cerr

import "fmt"

type Error string

func (e Error) Error() string {
	return string(e)
}

// Errorf returns an error that wraps e, with the formatted detail appended
// after a colon.
func (e Error) Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}
