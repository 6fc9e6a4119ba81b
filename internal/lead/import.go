package lead

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/glowheal/catalog/internal/model"
)

// Import copies leads into s. The input is either a JSON array, as written by
// export, or JSON Lines, as written to LogFile. Leads whose id already exists
// are skipped. Every lead is checked before any is stored, so an input with a
// bad record imports nothing.
func Import(ctx context.Context, s Store, r io.Reader) (imported, skipped int, err error) {
	leads, err := decodeLeads(r)
	if err != nil {
		return 0, 0, err
	}
	for i := range leads {
		if leads[i].ID == "" {
			return 0, 0, fmt.Errorf("%w: lead %d has no id", ErrInvalid, i+1)
		}
		if err := CheckContact(&leads[i]); err != nil {
			return 0, 0, fmt.Errorf("lead %s: %w", leads[i].ID, err)
		}
	}
	for i := range leads {
		_, created, err := s.Put(ctx, &leads[i])
		if err != nil {
			return imported, skipped, fmt.Errorf("import %s: %w", leads[i].ID, err)
		}
		if created {
			imported++
		} else {
			skipped++
		}
	}
	return imported, skipped, nil
}

func decodeLeads(r io.Reader) ([]model.Lead, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leads: %w", err)
	}

	if first == '[' {
		var leads []model.Lead
		if err := json.NewDecoder(br).Decode(&leads); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return leads, nil
	}

	var leads []model.Lead
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var l model.Lead
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		leads = append(leads, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read leads: %w", err)
	}
	return leads, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
