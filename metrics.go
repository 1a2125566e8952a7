package blog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_page_renders_total",
		Help: "Pages rendered by the server, by kind",
	}, []string{"kind"})

	Subscriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_subscriptions_total",
		Help: "Subscription submissions relayed, by outcome",
	}, []string{"result"})

	ContentReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_content_reloads_total",
		Help: "Content reloads triggered by the watcher, by outcome",
	}, []string{"result"})
)
