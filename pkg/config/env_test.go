package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Setenv("CFG_STRING", "  value ")
	assert.Equal(t, "value", String("CFG_STRING", "def"))
	assert.Equal(t, "def", String("CFG_STRING_MISSING", "def"))
}

func TestInt(t *testing.T) {
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_INT_BAD", "x")
	assert.Equal(t, 42, Int("CFG_INT", 1))
	assert.Equal(t, 1, Int("CFG_INT_BAD", 1))
}

func TestDuration(t *testing.T) {
	t.Setenv("CFG_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, Duration("CFG_DUR", time.Second))
	assert.Equal(t, time.Second, Duration("CFG_DUR_MISSING", time.Second))
}

func TestBool(t *testing.T) {
	t.Setenv("CFG_BOOL", "yes")
	t.Setenv("CFG_BOOL_OFF", "off")
	assert.True(t, Bool("CFG_BOOL", false))
	assert.False(t, Bool("CFG_BOOL_OFF", true))
	assert.True(t, Bool("CFG_BOOL_MISSING", true))
}

func TestList(t *testing.T) {
	t.Setenv("CFG_LIST", "a:1, ,b:2")
	assert.Equal(t, []string{"a:1", "b:2"}, List("CFG_LIST", ""))
	assert.Equal(t, []string{"x"}, List("CFG_LIST_MISSING", "x"))
}
