package user

import (
	"context"
	"strconv"
	"time"
)

type StubUserRepo struct {
	nextId int
	data   map[string]User
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{data: map[string]User{}}
}

func (s *StubUserRepo) Create(ctx context.Context, user User) (User, error) {
	s.nextId++
	user.ID = "user-" + strconv.Itoa(s.nextId)
	user.CreatedAt = time.Now().UTC()
	s.data[user.ID] = user
	return user, nil
}

func (s *StubUserRepo) FindByID(ctx context.Context, id string) (User, error) {
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	for _, user := range s.data {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) Cleanup() {
	s.data = map[string]User{}
}
