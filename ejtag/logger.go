// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "github.com/sirupsen/logrus"

var logger *logrus.Logger

func init() {
	logger = logrus.New()
}

// SetLogger lets a host program route this package's log output through its
// own logrus instance, the same way ublaster.SetLogger does for the JTAG
// engine.
func SetLogger(l *logrus.Logger) {
	logger = l
}
