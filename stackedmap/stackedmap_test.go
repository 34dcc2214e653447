// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeward/stakeward/stackedmap"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []interface{}
	}{
		{func() {}, 0, "", "", "foo", []interface{}{"bar", true, nil}},
		{func() { sm.Push() }, 1, "foo", "baz", "foo", []interface{}{"baz", true, nil}},
		{func() {}, 1, "foo", "baz1", "foo", []interface{}{"baz1", true, nil}},
		{func() { sm.Push() }, 2, "foo", "qux", "foo", []interface{}{"qux", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []interface{}{"baz1", true, nil}},
		{func() { sm.Pop() }, 0, "", "", "foo", []interface{}{"bar", true, nil}},

		{func() { sm.Push(); sm.Push() }, 2, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(_ string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}

	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i, "Journal should traverse all entries")

	i = 0
	sm.Journal(func(_, _ string) bool {
		i++
		return false
	})
	assert.Equal(1, i, "Journal traverse should abort")
}

func TestStackedMapSameLevelReput(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(_ string) (string, bool, error) {
		return "", false, nil
	})

	sm.Push()
	sm.Put("k", "v1")
	sm.Put("k", "v2")
	v, ok, err := sm.Get("k")
	assert.Equal([]interface{}{"v2", true, nil}, M(v, ok, err))

	// a same-level re-put must unwind cleanly
	sm.Pop()
	_, ok, err = sm.Get("k")
	assert.False(ok)
	assert.Nil(err)
}
