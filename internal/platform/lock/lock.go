package lock

import (
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
)

// Locker 抽象了"非阻塞尝试获取命名互斥锁"这一能力。
// 锁的持有者在同一时刻最多只有一个；竞争失败方立即得到 ok=false，绝不阻塞。
// 返回的release函数必须在事务结束前调用（通过defer），
// 对于事务级咨询锁它是空操作，锁随事务提交/回滚自动释放。
type Locker interface {
	TryAcquire(tx *gorm.DB, name string) (release func(), ok bool, err error)
}

// Default 是全局使用的Locker实例，由Use在启动时根据数据库驱动选定。
var Default Locker = &LocalLocker{}

// Use 根据数据库驱动选择锁实现。
func Use(driver string) {
	switch driver {
	case "postgres":
		Default = &AdvisoryLocker{}
	default:
		Default = &LocalLocker{}
	}
	fmt.Printf("锁实现已选定: driver=%s\n", driver)
}

// keyFor 将锁名哈希为64位整数，作为Postgres咨询锁的键。
func keyFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// AdvisoryLocker 基于Postgres的事务级咨询锁实现。
// pg_try_advisory_xact_lock 随事务提交或回滚自动释放，
// 进程崩溃时由数据库保证锁不会泄漏。
type AdvisoryLocker struct{}

func (l *AdvisoryLocker) TryAcquire(tx *gorm.DB, name string) (func(), bool, error) {
	var acquired bool
	if err := tx.Raw("SELECT pg_try_advisory_xact_lock(?)", keyFor(name)).Scan(&acquired).Error; err != nil {
		return nil, false, fmt.Errorf("无法获取咨询锁 %s: %w", name, err)
	}
	// 事务级锁无需手动释放
	return func() {}, acquired, nil
}

// LocalLocker 是单进程部署（sqlite驱动）下的降级实现。
// 它在进程内维护一张持有中的锁名表，保持与咨询锁相同的"忙则跳过"语义。
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *LocalLocker) TryAcquire(_ *gorm.DB, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.held, name)
		})
	}
	return release, true, nil
}
