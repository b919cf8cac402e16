package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/MediaBias/internal/analysis"
	"github.com/LJTian/MediaBias/internal/processor"
)

const (
	latestKey = "mediabias:report:latest"
	// 最近报告在 Redis 中保留一天，过期后回落到数据库
	latestTTL = 24 * time.Hour
	// 历史列表只做短缓存，保存新报告时不主动清理
	historyTTL = 30 * time.Second

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Report 是一次分析运行的持久化形式
type Report struct {
	ID         string         `gorm:"primaryKey;size:40" json:"id"`
	Model      string         `gorm:"size:128" json:"model"`
	Outcome    string         `gorm:"size:32;index" json:"outcome"`
	Sites      datatypes.JSON `gorm:"type:jsonb" json:"sites"`
	Summaries  datatypes.JSON `gorm:"type:jsonb" json:"summaries"`
	Report     string         `gorm:"type:text" json:"report"`
	StartedAt  time.Time      `gorm:"index" json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// Store 的 DB 与 Redis 均可为空：只配置其一时按能用的那一半工作
type Store struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *zap.Logger
}

func New(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{DB: db, Redis: rdb, logger: logger}
}

// Open 按配置连接 PostgreSQL 与 Redis；两者都未配置时返回 nil
func Open(dsn, redisAddr string, logger *zap.Logger) (*Store, error) {
	if dsn == "" && redisAddr == "" {
		return nil, nil
	}
	s := New(nil, nil, logger)

	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.AutoMigrate(&Report{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		s.DB = db
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			s.logger.Warn("redis ping failed", zap.String("addr", redisAddr), zap.Error(err))
		}
		s.Redis = rdb
	}
	return s, nil
}

// toValidUTF8 模型输出偶尔夹带非法字节，PostgreSQL 会拒绝写入
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func fromResult(r *analysis.Result) (*Report, error) {
	sites, err := json.Marshal(r.Sites)
	if err != nil {
		return nil, err
	}
	sets := make([]processor.SummarySet, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		stories := make([]processor.StoryRecord, 0, len(s.Stories))
		for _, st := range s.Stories {
			stories = append(stories, processor.StoryRecord{
				Title:       toValidUTF8(st.Title),
				Description: toValidUTF8(st.Description),
				MediaOutlet: toValidUTF8(st.MediaOutlet),
			})
		}
		sets = append(sets, processor.SummarySet{URL: s.URL, Stories: stories})
	}
	summaries, err := json.Marshal(sets)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:         r.ID,
		Model:      r.Model,
		Outcome:    r.Outcome,
		Sites:      datatypes.JSON(sites),
		Summaries:  datatypes.JSON(summaries),
		Report:     toValidUTF8(r.Report),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}, nil
}

func (rep *Report) toResult() (*analysis.Result, error) {
	res := &analysis.Result{
		ID:         rep.ID,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		Model:      rep.Model,
		Report:     rep.Report,
		Outcome:    rep.Outcome,
		Sites:      []string{},
		Summaries:  []processor.SummarySet{},
	}
	if len(rep.Sites) > 0 {
		if err := json.Unmarshal(rep.Sites, &res.Sites); err != nil {
			return nil, fmt.Errorf("decode sites of %s: %w", rep.ID, err)
		}
	}
	if len(rep.Summaries) > 0 {
		if err := json.Unmarshal(rep.Summaries, &res.Summaries); err != nil {
			return nil, fmt.Errorf("decode summaries of %s: %w", rep.ID, err)
		}
	}
	return res, nil
}

// SaveReport 写数据库并刷新 Redis 中的最近报告
func (s *Store) SaveReport(ctx context.Context, r *analysis.Result) error {
	rep, err := fromResult(r)
	if err != nil {
		return err
	}

	if s.DB != nil {
		if err := s.DB.WithContext(ctx).Create(rep).Error; err != nil {
			return fmt.Errorf("insert report %s: %w", rep.ID, err)
		}
	}

	if s.Redis != nil {
		bs, err := json.Marshal(rep)
		if err != nil {
			return err
		}
		// 缓存失败不影响入库结果
		if err := s.Redis.Set(ctx, latestKey, bs, latestTTL).Err(); err != nil {
			s.logger.Warn("cache latest report failed", zap.Error(err))
		}
	}
	return nil
}

// LatestReport 先查 Redis，未命中再查数据库；都没有时返回 analysis.ErrNoReport
func (s *Store) LatestReport(ctx context.Context) (*analysis.Result, error) {
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, latestKey).Bytes(); err == nil {
			var rep Report
			if err := json.Unmarshal(bs, &rep); err == nil {
				return rep.toResult()
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read latest report from redis failed", zap.Error(err))
		}
	}

	if s.DB == nil {
		return nil, analysis.ErrNoReport
	}
	var list []Report
	if err := s.DB.WithContext(ctx).Order("started_at DESC").Limit(1).Find(&list).Error; err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, analysis.ErrNoReport
	}
	return list[0].toResult()
}

// ListReports 按开始时间倒序返回历史报告，limit 超出范围时取默认值
func (s *Store) ListReports(ctx context.Context, limit int) ([]analysis.Result, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	if s.DB == nil {
		latest, err := s.LatestReport(ctx)
		if errors.Is(err, analysis.ErrNoReport) {
			return []analysis.Result{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []analysis.Result{*latest}, nil
	}

	cacheKey := fmt.Sprintf("mediabias:report:history:%d", limit)
	var list []Report
	cached := false
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			cached = json.Unmarshal(bs, &list) == nil
		}
	}

	if !cached {
		if err := s.DB.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&list).Error; err != nil {
			return nil, err
		}
		if s.Redis != nil && len(list) > 0 {
			if bs, err := json.Marshal(list); err == nil {
				_ = s.Redis.Set(ctx, cacheKey, bs, historyTTL).Err()
			}
		}
	}

	out := make([]analysis.Result, 0, len(list))
	for i := range list {
		res, err := list[i].toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}
