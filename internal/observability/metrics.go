package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatsOpened counts exchange chats created.
	ChatsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interu_chats_opened_total",
		Help: "Total number of exchange chats opened",
	})

	// MessagesPosted counts chat messages appended.
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interu_messages_posted_total",
		Help: "Total number of chat messages posted",
	})

	// ExchangesCompleted counts open→completed transitions (no-op re-completions excluded).
	ExchangesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interu_exchanges_completed_total",
		Help: "Total number of exchanges marked complete",
	})

	// RatingsSubmitted counts ratings by score.
	RatingsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interu_ratings_submitted_total",
		Help: "Total number of ratings submitted by score",
	}, []string{"score"})

	// NotificationsEmitted counts fan-out records by kind.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interu_notifications_emitted_total",
		Help: "Total number of notifications appended by kind",
	}, []string{"kind"})

	// ReportsFiled counts reports filed against skill posts.
	ReportsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interu_reports_filed_total",
		Help: "Total number of post reports filed",
	})

	// ReportsResolved counts moderator resolutions by action.
	ReportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interu_reports_resolved_total",
		Help: "Total number of reports resolved by action",
	}, []string{"action"})

	// DomainErrors counts rejected operations by operation and error code.
	DomainErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interu_domain_errors_total",
		Help: "Operations rejected by the workflow engine",
	}, []string{"operation", "code"})
)
