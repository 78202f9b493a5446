// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import (
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger = nil
)

const MaxLogLevel = logrus.DebugLevel

func init() {
	logger = logrus.New()
}

// SetLogger lets a host program route the engine's log output through its
// own logrus instance.
func SetLogger(loggerInstance *logrus.Logger) {
	logger = loggerInstance
}
