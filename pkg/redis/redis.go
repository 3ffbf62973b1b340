package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"nthumods/config"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")

// Client Redis 客户端封装
// 用于课表结果缓存与接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 课表缓存 ──

const (
	timetablePrefix   = "timetable:"
	catalogVersionKey = "timetable:catalog_version"
)

// 键中带目录版本号，目录导入后旧版本的缓存自然失效并随 TTL 过期
func timetableKey(version int64, userID, semester string) string {
	return timetablePrefix + "v" + strconv.FormatInt(version, 10) + ":" + userID + ":" + semester
}

func (c *Client) catalogVersion(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

// GetTimetable 读取缓存的课表 JSON；未命中返回 ErrCacheMiss
func (c *Client) GetTimetable(ctx context.Context, userID, semester string) ([]byte, error) {
	version, err := c.catalogVersion(ctx)
	if err != nil {
		return nil, err
	}
	b, err := c.rdb.Get(ctx, timetableKey(version, userID, semester)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

// SetTimetable 写入课表 JSON
func (c *Client) SetTimetable(ctx context.Context, userID, semester string, payload []byte, ttl time.Duration) error {
	version, err := c.catalogVersion(ctx)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, timetableKey(version, userID, semester), payload, ttl).Err()
}

// InvalidateTimetable 删除缓存（选课或颜色变更后调用）
func (c *Client) InvalidateTimetable(ctx context.Context, userID, semester string) error {
	version, err := c.catalogVersion(ctx)
	if err != nil {
		return err
	}
	return c.rdb.Del(ctx, timetableKey(version, userID, semester)).Err()
}

// InvalidateCatalog 递增目录版本号，使全部用户的课表缓存失效（课程导入后调用）
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	version, err := c.rdb.Incr(ctx, catalogVersionKey).Result()
	if err != nil {
		return err
	}
	c.logger.Info("课表缓存目录版本已更新", zap.Int64("version", version))
	return nil
}

// ── 限流 ──

// CheckRateLimit 基于有序集合的滑动窗口计数
// 返回 true 表示本次请求允许通过
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
