package media

import (
	"context"
	"strconv"
)

type StubUploader struct {
	nextId   int
	Uploaded map[string][]byte
	Deleted  []string
	FailNext error
}

func NewStubUploader() *StubUploader {
	return &StubUploader{Uploaded: map[string][]byte{}}
}

func (s *StubUploader) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return "", err
	}
	s.nextId++
	url := "https://media.test/upload/v1/proof-" + strconv.Itoa(s.nextId)
	s.Uploaded[url] = content
	return url, nil
}

func (s *StubUploader) Delete(ctx context.Context, url string) error {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	s.Deleted = append(s.Deleted, url)
	return nil
}
