package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ManiEids/vef2hop2/domain"
)

type seedAccount struct {
	user     domain.User
	password string
}

var seedAccounts = []seedAccount{
	{user: domain.User{ID: "1", Username: "admin", Email: "admin@example.com", Name: "Admin", Admin: true}, password: "admin"},
	{user: domain.User{ID: "2", Username: "user", Email: "user@example.com", Name: "Venjulegur notandi"}, password: "user"},
}

var seedCategories = []domain.Category{
	{ID: "1", Name: "Vinna"},
	{ID: "2", Name: "Persónulegt"},
	{ID: "3", Name: "Nám"},
	{ID: "4", Name: "Heilsa"},
	{ID: "5", Name: "Heimili"},
}

var seedTags = []domain.Tag{
	{ID: "1", Name: "Mikilvægt"},
	{ID: "2", Name: "Fundur"},
	{ID: "3", Name: "Lágt forgangsstig"},
	{ID: "4", Name: "Frestur"},
	{ID: "5", Name: "Bíður"},
}

var seedTasks = []domain.Task{
	{ID: "1", Title: "Læra JavaScript", Description: "Study JavaScript fundamentals", Priority: 2},
	{ID: "2", Title: "Byggja verkefni", Description: "Create a basic todo application", Priority: 2},
	{ID: "3", Title: "Setja upp á Render", Description: "Deploy the todo application to Render", Priority: 2},
	{
		ID: "5", Title: "Skila hópaverkefni 1", Description: "Klára hópaverkefni 1",
		CategoryID: "3", CategoryName: "Nám", Tags: []string{"Bíður"}, DueDate: "2025-03-14", Priority: 1,
	},
	{
		ID: "6", Title: "Eitthvað annað", Description: "Þetta er eitthvað annað",
		CategoryID: "2", CategoryName: "Persónulegt", Tags: []string{"Lágt forgangsstig"}, DueDate: "2025-03-22", Priority: 3,
	},
	{
		ID: "7", Title: "Meira af dóti", Description: "Nota það sem ég finn",
		CategoryID: "1", CategoryName: "Vinna", Tags: []string{"Fundur"}, DueDate: "2025-03-19", Priority: 2, Completed: true,
	},
	{
		ID: "8", Title: "Elda mat", Description: "Pakkasúpa",
		CategoryID: "5", CategoryName: "Heimili", Tags: []string{"Lágt forgangsstig"}, DueDate: "2025-03-13", Priority: 3, Completed: true,
	},
}

// Seed fills each empty collection with the initial data set. Collections
// that already hold records are left alone.
func (s *Service) Seed(ctx context.Context) error {
	accounts, err := s.store.AllAccounts(ctx)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if len(accounts) == 0 {
		for _, sa := range seedAccounts {
			hash, err := bcrypt.GenerateFromPassword([]byte(sa.password), s.opts.PasswordCost)
			if err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
			if err := s.store.PutAccount(ctx, domain.Account{User: sa.user, PasswordHash: string(hash)}); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
	}

	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if len(cats) == 0 {
		for _, c := range seedCategories {
			if err := s.store.PutCategory(ctx, c); err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
	}

	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	if len(tags) == 0 {
		for _, t := range seedTags {
			if err := s.store.PutTag(ctx, t); err != nil {
				return fmt.Errorf("seed tags: %w", err)
			}
		}
	}

	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	if len(tasks) == 0 {
		now := s.now().UTC()
		batch := make([]domain.Task, len(seedTasks))
		for i, t := range seedTasks {
			t.Tags = append([]string{}, t.Tags...)
			t.CreatedAt = now
			t.Modified = now.UnixMilli()
			batch[i] = t
		}
		if err := s.store.PutTasks(ctx, batch...); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
		s.logger.WithField("tasks", len(batch)).Info("seeded initial data")
	}
	return nil
}
