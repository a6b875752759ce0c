package cmd

import (
	"fmt"
	"strings"

	"github.com/loadwise/tracy/pkg/repository"
	"github.com/loadwise/tracy/pkg/repository/file"
	"github.com/loadwise/tracy/pkg/repository/redis"
)

func NewDocumentRepository(documentsURL string) repository.DocumentRepository {
	if strings.HasPrefix(documentsURL, "redis://") || strings.HasPrefix(documentsURL, "rediss://") {
		repo, err := redis.NewRepository(documentsURL)
		if err != nil {
			panic(fmt.Errorf("failed to create redis document repository: %w", err))
		}

		return repo
	}

	return file.NewRepository(documentsURL)
}
