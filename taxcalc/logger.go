package taxcalc

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "taxcalc")
