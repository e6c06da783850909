package library

import (
	"context"
	"time"

	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/metrics"
	"github.com/binhbb2204/BookHub/pkg/models"
)

type UpsertResult int

const (
	Created UpsertResult = iota
	Updated
)

func (r UpsertResult) String() string {
	if r == Updated {
		return "updated"
	}
	return "created"
}

// Message is the user-facing wording of the result.
func (r UpsertResult) Message() string {
	if r == Updated {
		return "Updated Rating"
	}
	return "Added Rating"
}

type FavouriteState int

const (
	Added FavouriteState = iota
	Removed
)

func (s FavouriteState) String() string {
	if s == Removed {
		return "removed"
	}
	return "added"
}

func (s FavouriteState) Message() string {
	if s == Removed {
		return "Removed from favourites"
	}
	return "Added to favourites"
}

const DefaultStoreTimeout = 5 * time.Second

type Options struct {
	RecommendThreshold int
	StoreTimeout       time.Duration
	Logger             *logger.Logger
}

type Service struct {
	store     Store
	threshold int
	timeout   time.Duration
	log       *logger.Logger
}

func NewService(store Store, opts Options) *Service {
	if opts.RecommendThreshold == 0 {
		opts.RecommendThreshold = DefaultRecommendThreshold
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	return &Service{
		store:     store,
		threshold: opts.RecommendThreshold,
		timeout:   opts.StoreTimeout,
		log:       opts.Logger.WithContext("component", "library"),
	}
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func checkIDs(ids ...string) error {
	for _, id := range ids {
		if !ValidateID(id) {
			return InvalidIdentifier("Invalid ID")
		}
	}
	return nil
}

func (s *Service) AddBook(ctx context.Context, userID string, req models.AddBookRequest) (*models.Book, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}
	if err := validateNewBook(&req); err != nil {
		return nil, err
	}

	book := &models.Book{
		ID:          NewID(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CoverFile:   req.CoverFile,
		PDFFile:     req.PDFFile,
		AddedBy:     userID,
		CreatedAt:   time.Now().UTC(),
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Service) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListBooks(ctx, query)
}

// DeleteBook removes a book owned by userID. Its ratings and favourites
// stay behind and are ignored by readers.
func (s *Service) DeleteBook(ctx context.Context, bookID, userID string) error {
	if err := checkIDs(bookID, userID); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if IsNotFound(err) {
			return NotFound("No such Book was found")
		}
		return err
	}
	if book.AddedBy != userID {
		return Forbidden("Only the owner can delete this book")
	}
	return s.store.DeleteBook(ctx, bookID)
}

// SubmitRating creates or replaces the user's rating of a book.
func (s *Service) SubmitRating(ctx context.Context, userID, bookID string, value int) (UpsertResult, error) {
	if err := checkIDs(userID); err != nil {
		return Created, err
	}
	if !ValidateID(bookID) {
		return Created, InvalidIdentifier("Invalid Book ID")
	}
	if value < MinRating || value > MaxRating {
		return Created, ErrInvalidRatingValue
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existed, err := s.store.UpsertRating(ctx, userID, bookID, value)
	if err != nil {
		return Created, err
	}

	result := Created
	if existed {
		result = Updated
	}
	metrics.IncrementRatingsSubmitted(result.String())
	return result, nil
}

// ComputeStatistics never fails: when the ratings cannot be read or
// reduced it answers with ZeroStatistics.
func (s *Service) ComputeStatistics(ctx context.Context, bookID string) models.RatingStatistics {
	stats, err := s.statistics(ctx, bookID)
	if err != nil {
		s.log.Warn("statistics_fallback", "book_id", bookID, "error", err)
		metrics.IncrementStatisticsFallbacks()
		return ZeroStatistics()
	}
	return stats
}

func (s *Service) statistics(ctx context.Context, bookID string) (models.RatingStatistics, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tally, err := s.store.RatingTally(ctx, bookID)
	if err != nil {
		return models.RatingStatistics{}, aggregationFailure("read ratings", err)
	}
	return Aggregate(tally, s.threshold)
}

func (s *Service) ToggleFavourite(ctx context.Context, userID, bookID string) (FavouriteState, error) {
	if err := checkIDs(userID); err != nil {
		return Added, err
	}
	if !ValidateID(bookID) {
		return Added, InvalidIdentifier("Invalid Book ID")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if IsNotFound(err) {
			return Added, NotFound("No such Book was found")
		}
		return Added, err
	}

	present, err := s.store.ToggleFavourite(ctx, userID, bookID)
	if err != nil {
		return Added, err
	}

	state := Added
	if !present {
		state = Removed
	}
	metrics.IncrementFavouritesToggled(state.String())
	return state, nil
}

func (s *Service) ListFavourites(ctx context.Context, userID string) ([]models.Book, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.FavouriteBooks(ctx, userID)
}

// GetBookDetail assembles a book with the caller's favourite flag and its
// rating statistics. The three reads are not isolated from each other.
func (s *Service) GetBookDetail(ctx context.Context, bookID, userID string) (*models.BookDetail, error) {
	if !ValidateID(bookID) {
		return nil, InvalidIdentifier("Invalid Book ID")
	}
	if err := checkIDs(userID); err != nil {
		return nil, err
	}

	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	book, err := s.store.GetBook(readCtx, bookID)
	if err != nil {
		if IsNotFound(err) {
			return nil, NotFound("No such Book was found")
		}
		return nil, err
	}

	inFavourite, err := s.store.IsFavourite(readCtx, userID, bookID)
	if err != nil {
		return nil, err
	}

	return &models.BookDetail{
		Book:        *book,
		InFavourite: inFavourite,
		Rating:      s.ComputeStatistics(ctx, bookID),
	}, nil
}
