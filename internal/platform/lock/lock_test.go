package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSkipsWhenBusy(t *testing.T) {
	l := &LocalLocker{}

	release, ok, err := l.TryAcquire(nil, "leaderboard:coins:all")
	require.NoError(t, err)
	require.True(t, ok)

	// 持有期间任何竞争者都立即失败，绝不阻塞
	_, ok2, err := l.TryAcquire(nil, "leaderboard:coins:all")
	require.NoError(t, err)
	assert.False(t, ok2)

	release()

	// 释放后可以再次获取
	release3, ok3, err := l.TryAcquire(nil, "leaderboard:coins:all")
	require.NoError(t, err)
	assert.True(t, ok3)
	release3()
}

func TestLocalLockerIndependentNames(t *testing.T) {
	l := &LocalLocker{}

	releaseA, okA, err := l.TryAcquire(nil, "leaderboard:coins:all")
	require.NoError(t, err)
	require.True(t, okA)
	defer releaseA()

	releaseB, okB, err := l.TryAcquire(nil, "leaderboard:level:week")
	require.NoError(t, err)
	assert.True(t, okB)
	releaseB()
}

func TestLocalLockerReleaseIsIdempotent(t *testing.T) {
	l := &LocalLocker{}

	release, ok, err := l.TryAcquire(nil, "leaderboard:level:all")
	require.NoError(t, err)
	require.True(t, ok)

	release()
	release() // 重复释放不应放掉别人的锁

	release2, ok2, err := l.TryAcquire(nil, "leaderboard:level:all")
	require.NoError(t, err)
	require.True(t, ok2)

	_, ok3, err := l.TryAcquire(nil, "leaderboard:level:all")
	require.NoError(t, err)
	assert.False(t, ok3)
	release2()
}

func TestLocalLockerSingleWinnerUnderContention(t *testing.T) {
	l := &LocalLocker{}

	const contenders = 32
	var wins int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, ok, err := l.TryAcquire(nil, "leaderboard:coins:all")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	// 并发竞争下有且只有一个赢家
	assert.Equal(t, int64(1), wins)
}

func TestKeyForIsStable(t *testing.T) {
	assert.Equal(t, keyFor("leaderboard:coins:all"), keyFor("leaderboard:coins:all"))
	assert.NotEqual(t, keyFor("leaderboard:coins:all"), keyFor("leaderboard:level:all"))
}
