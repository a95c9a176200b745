package wallet

import "context"

type Store interface {
	Load(ctx context.Context, userID string) (Wallet, error)
}

type Service struct {
	Store Store
}

// History returns one page of the user's transactions, newest first.
func (s *Service) History(ctx context.Context, userID string, page, limit int) (Page, error) {
	w, err := s.Store.Load(ctx, userID)
	if err != nil {
		return Page{}, err
	}
	return Paginate(w, page, limit), nil
}
