// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/distributed_locks" // 所有分布式锁的根节点
)

// Conn 包装一个 ZooKeeper 会话。
type Conn struct {
	conn *zk.Conn
}

// Connect 建立 ZooKeeper 会话并确保锁根节点存在。
func Connect(addrs []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(addrs, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect zookeeper: %w", err)
	}
	if _, err := conn.Create(lockRoot, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		conn.Close()
		return nil, fmt.Errorf("failed to create lock root node: %w", err)
	}
	return &Conn{conn: conn}, nil
}

func (c *Conn) Close() {
	c.conn.Close()
}

// TryLock 定义了一个非阻塞的分布式锁对象。
// 与排队等待的顺序节点锁不同，TryLock 直接创建一个临时节点：
// 创建成功即持有锁，节点已存在则立刻放弃。适合"拿不到就跳过本轮"
// 的周期性任务（如过期预占清扫），不适合需要公平排队的场景。
type TryLock struct {
	conn *Conn
	path string // 锁的路径，例如 /distributed_locks/reservation-reaper
}

// NewTryLock 创建一个新的非阻塞锁实例。
func NewTryLock(conn *Conn, resourceID string) *TryLock {
	return &TryLock{
		conn: conn,
		path: lockRoot + "/" + resourceID,
	}
}

// Acquire 尝试获取锁。返回 false 表示锁已被其他实例持有。
// 临时节点随会话消亡，持有者崩溃后锁会自动释放。
func (l *TryLock) Acquire() (bool, error) {
	_, err := l.conn.conn.Create(l.path, []byte(""), zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err == zk.ErrNodeExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create lock node %s: %w", l.path, err)
	}
	return true, nil
}

// Release 释放锁。节点不存在时视为已释放。
func (l *TryLock) Release() error {
	err := l.conn.conn.Delete(l.path, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node %s: %w", l.path, err)
	}
	return nil
}
