package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestObserveDragAndWrite(t *testing.T) {
	m := New("taskboard")
	m.ObserveDrag("cross_container_move", "applied")
	m.ObserveDrag("cross_container_move", "applied")
	m.ObserveDrag("none", "destination_not_found")
	m.ObserveWrite("redis", 5*time.Millisecond, nil)
	m.ObserveWrite("redis", time.Millisecond, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.drags.WithLabelValues("cross_container_move", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drags.WithLabelValues("none", "destination_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("redis")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.writes))
}

func TestHandlerServesTextFormat(t *testing.T) {
	m := New("taskboard")
	m.ObserveDrag("board_reorder", "noop")

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/metrics")
	m.Handler()(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.True(t, strings.Contains(body, `taskboard_drag_outcomes_total{operation="board_reorder",status="noop"} 1`), body)
}
