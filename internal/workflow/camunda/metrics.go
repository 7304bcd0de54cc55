package camunda

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK     = "ok"
	resultError  = "error"
	resultNoTask = "no_task"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "workflow_notifications_total",
		Help: "Outbound workflow engine calls by operation and result",
	},
	[]string{"operation", "result"},
)
