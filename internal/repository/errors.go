package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")

// ErrQuotaExceeded - хранилище отказалось принять значение из-за лимита размера
var ErrQuotaExceeded = errors.New("превышен лимит хранилища")
