package service

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GoPolymarket/polyexec/internal/model"
)

// JournalService records every order submission to a daily JSONL file and,
// when a repo is wired, to durable storage. Recording never blocks the
// order path: a full channel drops the entry.
type JournalService struct {
	entryChan chan *model.Submission
	logFile   *os.File
	buffer    *journalBuffer
	repo      SubmissionRepo
}

type SubmissionRepo interface {
	Insert(ctx context.Context, entry *model.Submission) error
	List(ctx context.Context, limit int) ([]*model.Submission, error)
}

func NewJournalService(logDir string, repo SubmissionRepo) (*JournalService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	filename := filepath.Join(logDir, "submissions-"+time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &JournalService{
		entryChan: make(chan *model.Submission, 1000),
		logFile:   f,
		buffer:    newJournalBuffer(1000),
		repo:      repo,
	}

	go svc.processEntries()

	return svc, nil
}

// Record accepts a submission entry. Entries carry outcomes only; signing
// material never reaches the journal.
func (s *JournalService) Record(entry *model.Submission) {
	if s.buffer != nil {
		s.buffer.Add(entry)
	}
	select {
	case s.entryChan <- entry:
	default:
		log.Println("⚠️ Submission journal buffer full, dropping entry")
	}
}

func (s *JournalService) List(ctx context.Context, limit int) ([]*model.Submission, error) {
	if s.repo != nil {
		records, err := s.repo.List(ctx, limit)
		if err == nil {
			return records, nil
		}
	}
	if s.buffer == nil {
		return nil, nil
	}
	return s.buffer.List(limit), nil
}

func (s *JournalService) processEntries() {
	encoder := json.NewEncoder(s.logFile)
	for entry := range s.entryChan {
		if s.repo != nil {
			if err := s.repo.Insert(context.Background(), entry); err != nil {
				log.Printf("❌ Failed to write submission to DB: %v", err)
			}
		}
		if err := encoder.Encode(entry); err != nil {
			log.Printf("❌ Failed to write submission journal: %v", err)
		}
	}
}

func (s *JournalService) Close() {
	close(s.entryChan)
	s.logFile.Close()
}

type journalBuffer struct {
	mu        sync.Mutex
	maxSize   int
	records   []*model.Submission
	nextIndex int
}

func newJournalBuffer(maxSize int) *journalBuffer {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &journalBuffer{
		maxSize: maxSize,
		records: make([]*model.Submission, 0, maxSize),
	}
}

func (b *journalBuffer) Add(entry *model.Submission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) < b.maxSize {
		b.records = append(b.records, entry)
		return
	}
	b.records[b.nextIndex] = entry
	b.nextIndex = (b.nextIndex + 1) % b.maxSize
}

func (b *journalBuffer) List(limit int) []*model.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 || limit > b.maxSize {
		limit = b.maxSize
	}
	results := make([]*model.Submission, 0, limit)
	total := len(b.records)
	for i := 0; i < total; i++ {
		idx := (b.nextIndex + total - 1 - i) % total
		entry := b.records[idx]
		if entry == nil {
			continue
		}
		results = append(results, entry)
		if len(results) >= limit {
			break
		}
	}
	return results
}
