package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cabinet-backend/persistence"
)

// maxNumberAttempts bounds regeneration after a number conflict.
const maxNumberAttempts = 5

type counterDoc struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

func counterKey(prefix string, year int) string {
	return fmt.Sprintf("%s-%d", prefix, year)
}

// FormatInvoiceNumber renders {prefix}-{year}-{sequence}, sequence padded
// to four digits.
func FormatInvoiceNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ParseInvoiceNumber splits a number produced by FormatInvoiceNumber. The
// prefix may itself contain dashes.
func ParseInvoiceNumber(number string) (prefix string, year, seq int, ok bool) {
	last := strings.LastIndex(number, "-")
	if last <= 0 {
		return "", 0, 0, false
	}
	mid := strings.LastIndex(number[:last], "-")
	if mid <= 0 {
		return "", 0, 0, false
	}
	year, err := strconv.Atoi(number[mid+1 : last])
	if err != nil {
		return "", 0, 0, false
	}
	seq, err = strconv.Atoi(number[last+1:])
	if err != nil {
		return "", 0, 0, false
	}
	return number[:mid], year, seq, true
}

func (s *Store) loadCounters(ctx context.Context) error {
	docs, err := readCollection[counterDoc](ctx, s.backend, persistence.CollectionCounters)
	if err != nil {
		return err
	}
	s.counters = make(map[string]int, len(docs))
	for _, d := range docs {
		s.counters[d.Key] = d.Value
	}
	return nil
}

// syncCountersLocked raises every counter to the highest sequence already
// issued, so numbers keep increasing even when counters were lost.
func (s *Store) syncCountersLocked() {
	for _, inv := range s.invoices {
		prefix, year, seq, ok := ParseInvoiceNumber(inv.Number)
		if !ok {
			continue
		}
		key := counterKey(prefix, year)
		if seq > s.counters[key] {
			s.counters[key] = seq
		}
	}
}

// nextInvoiceNumberLocked reserves the next number for prefix in the current
// year. The reservation is stored before the caller writes the invoice, so a
// failed invoice write leaves a gap but never a duplicate. Callers hold the
// write lock, which serializes concurrent creations.
func (s *Store) nextInvoiceNumberLocked(ctx context.Context, prefix string) (string, error) {
	year := s.now().Year()
	key := counterKey(prefix, year)
	seq := s.counters[key]
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		seq++
		number := FormatInvoiceNumber(prefix, year, seq)
		if s.numberTakenLocked(number) {
			s.logger.Warn().Err(ErrNumberConflict).Str("number", number).Msg("regenerating invoice number")
			continue
		}
		if err := s.put(ctx, persistence.CollectionCounters, key, counterDoc{Key: key, Value: seq}); err != nil {
			return "", err
		}
		s.counters[key] = seq
		return number, nil
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrNumberConflict, key, maxNumberAttempts)
}

func (s *Store) numberTakenLocked(number string) bool {
	for _, inv := range s.invoices {
		if inv.Number == number {
			return true
		}
	}
	return false
}
