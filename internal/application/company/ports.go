package company

import (
	"context"

	"github.com/t1tandr/uevent/internal/domain/company"
)

// TransactionalRepositories exposes the repositories bound to one transaction
type TransactionalRepositories interface {
	Companies() company.CompanyRepository
	Members() company.MemberRepository
}

// TransactionScope runs fn inside a single database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
