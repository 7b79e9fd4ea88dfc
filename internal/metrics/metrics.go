package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts requisitions accepted at submission.
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "requisition_submissions_total",
		Help: "Total requisitions accepted at submission.",
	})

	// DecisionsTotal counts stage decisions, labelled by review stage and
	// action.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "requisition_decisions_total",
		Help: "Total review decisions by stage and action.",
	}, []string{"stage", "action"})

	// AssignmentConflictsTotal counts approvals that lost the authoritative
	// availability check at assignment time.
	AssignmentConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "requisition_assignment_conflicts_total",
		Help: "Total admin approvals rejected because the resource was no longer available.",
	})

	// NotificationsTotal counts approval notifications by outcome.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "requisition_notifications_total",
		Help: "Total approval notifications by result.",
	}, []string{"result"})
)
