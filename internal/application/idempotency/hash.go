// Package idempotency реализует идемпотентность write-операций:
// канонический хеш запроса и state machine ключа (NEW -> LOCKED -> SETTLED).
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Payload - канонизируемое представление тела запроса.
// Write-команды из dtos реализуют его через CanonicalPayload().
type Payload interface {
	CanonicalPayload() map[string]any
}

// RequestHash вычисляет SHA-256 хеш канонической JSON-формы запроса.
//
// Каноническая форма - часть внешнего контракта: ключи отсортированы
// лексикографически, разделители без пробелов, суммы - decimal-строками
// с сохранением масштаба, UUID - lowercase с дефисами, даты - ISO-8601,
// отсутствующие опциональные поля - явные null. encoding/json даёт
// сортировку ключей и компактный вывод для map из коробки.
func RequestHash(payload Payload) (string, error) {
	normalized, err := json.Marshal(payload.CanonicalPayload())
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}
