package raycast

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(prefix string, debug bool) (*DefaultLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewDefaultLogger(prefix, debug)
	l.out = log.New(&buf, "", 0)
	l.err = log.New(&buf, "", 0)
	return l, &buf
}

func TestDefaultLoggerDebugGate(t *testing.T) {
	l, buf := newBufferLogger("pick", false)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Equal(t, "[pick] DEBUG: shown 2\n", buf.String())

	buf.Reset()
	noPrefix, out := newBufferLogger("", false)
	noPrefix.Warnf("careful")
	assert.Equal(t, "WARN: careful\n", out.String())
}

func TestServiceLogsHandleMisuse(t *testing.T) {
	l, buf := newBufferLogger("raycast", false)
	svc := NewRayCastingService(WithLogger(l))

	_, err := svc.FetchResult(context.Background(), 5)
	require.ErrorIs(t, err, ErrUnknownHandle)
	assert.Contains(t, buf.String(), "[raycast/query] WARN: fetch rejected: invalid query handle: unknown handle=5")
}

func TestServiceDebugLineCarriesQueryFields(t *testing.T) {
	l, buf := newBufferLogger("raycast", true)
	svc := NewRayCastingService(WithLogger(l))

	s := NewSphere(mgl32.Vec3{0, 0, 0}, 1, 7)
	h := svc.Query(Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}, FirstHit, VolumeList{s})

	assert.Equal(t,
		fmt.Sprintf("[raycast/query] DEBUG: query done handle=%d hits=1 mode=FirstHit nearest=7 volumes=1\n", h),
		buf.String())
}

func TestNamedLoggerSharesDebugSwitch(t *testing.T) {
	root, buf := newBufferLogger("", false)
	child := Named(root, "picking")

	child.Debugf("hidden")
	assert.Empty(t, buf.String())

	root.SetDebug(true)
	assert.True(t, child.DebugEnabled())
	child.Debugf("pick%s", Fields{"entity": 3, "button": 1})
	assert.Equal(t, "[picking] DEBUG: pick button=1 entity=3\n", buf.String())

	assert.Equal(t, NewNopLogger(), Named(NewNopLogger(), "picking"))
	assert.Empty(t, Fields{}.String())
}

func TestNopLogger(t *testing.T) {
	l := loggerOrNop(nil)
	require.NotNil(t, l)
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
}
