package inmemory

import (
	"context"
	"sync"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/repository"

	"go.uber.org/zap"
)

type Storage struct {
	storage map[string]string
	mtx     *sync.RWMutex
	quota   int // 0 - без ограничения
}

type Option func(*Storage)

// WithQuota ограничивает суммарный размер ключей и значений в байтах
func WithQuota(bytes int) Option {
	return func(s *Storage) {
		s.quota = bytes
	}
}

func NewStorage(options ...Option) *Storage {
	s := &Storage{
		storage: make(map[string]string),
		mtx:     &sync.RWMutex{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory хранилище доступно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.quota > 0 {
		size := s.sizeLocked() - s.entrySizeLocked(key) + len(key) + len(value)
		if size > s.quota {
			logger.Warn("Repository: превышен лимит in-memory хранилища",
				zap.String("key", key),
				zap.Int("size", size),
				zap.Int("quota", s.quota))
			return repository.ErrQuotaExceeded
		}
	}

	s.storage[key] = value
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, key)
	return nil
}

// Len возвращает количество сохранённых ключей
func (s *Storage) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.storage)
}

func (s *Storage) sizeLocked() int {
	size := 0
	for k, v := range s.storage {
		size += len(k) + len(v)
	}
	return size
}

func (s *Storage) entrySizeLocked(key string) int {
	value, ok := s.storage[key]
	if !ok {
		return 0
	}
	return len(key) + len(value)
}
