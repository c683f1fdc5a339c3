package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mjpitz/go-gracefully/check"
	"github.com/mjpitz/go-gracefully/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestChecks(t *testing.T) {
	checks := Checks(fakePinger{}, time.Second)
	require.Len(t, checks, 1)

	periodic, ok := checks[0].(*check.Periodic)
	require.True(t, ok)
	assert.Equal(t, "database", periodic.Metadata.Name)
	assert.Equal(t, time.Second, periodic.Interval)
}

func TestPingFunc(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    state.State
		wantErr bool
	}{
		{name: "reachable", want: state.OK},
		{name: "unreachable", err: errors.New("database is closed"), want: state.Outage, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pingFunc(fakePinger{err: tt.err})(context.Background())
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
