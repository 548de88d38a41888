package hdl

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "hdl")
