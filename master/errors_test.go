package master

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("create: %w", Errorf(CodeAlreadyPresent, "table %q exists", "t"))
	assert.Equal(t, CodeAlreadyPresent, CodeOf(err))
	assert.True(t, IsAlreadyPresent(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, `Already present: table "t" exists`, Errorf(CodeAlreadyPresent, "table %q exists", "t").Error())
}

func TestLiveCount(t *testing.T) {
	resp := &ListTabletServersResponse{Servers: []TabletServerPB{
		{UUID: "a", Alive: true},
		{UUID: "b"},
		{UUID: "c", Alive: true},
	}}
	assert.Equal(t, 2, resp.LiveCount())
}
