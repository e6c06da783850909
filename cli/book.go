package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	bookTitle       string
	bookAuthor      string
	bookDescription string
	bookCover       string
	bookPDF         string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book commands",
	Long:  `List, add, rate and favourite books.`,
}

func printBooks(books []models.Book) {
	for i, b := range books {
		fmt.Printf("%d. %s\n", i+1, b.Title)
		fmt.Printf("   ID: %s\n", b.ID)
		fmt.Printf("   Author: %s\n", b.Author)
		if b.Description != "" {
			desc := b.Description
			if len(desc) > 100 {
				desc = desc[:100] + "..."
			}
			fmt.Printf("   Description: %s\n", desc)
		}
		fmt.Println()
	}
}

func printStatistics(s models.RatingStatistics) {
	fmt.Printf("  Average rating: %.2f (%d reviews)\n", s.AvgRating, s.ReviewCount)
	fmt.Printf("  Recommended by: %.2f%%\n", s.Recommendation)
	for star := 5; star >= 1; star-- {
		pct := s.IndividualPerc[fmt.Sprint(star)]
		fmt.Printf("  %d★ %-20s %3d%%\n", star, strings.Repeat("█", pct/5), pct)
	}
}

var bookListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List books",
	Long:  `List all books, newest first, optionally filtered by title or author.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		path := "/v1/book"
		query := ""
		if len(args) == 1 {
			query = args[0]
			path += "?q=" + url.QueryEscape(query)
		}

		var books []models.Book
		if _, err := client.decode(http.MethodGet, path, nil, &books); err != nil {
			printError("Failed to list books: " + err.Error())
			return err
		}

		if len(books) == 0 {
			if query != "" {
				fmt.Printf("No books found for query: %s\n", query)
			} else {
				fmt.Println("No books yet. Try: bookhub book add")
			}
			return nil
		}

		fmt.Printf("Found %d book(s):\n\n", len(books))
		printBooks(books)
		return nil
	},
}

var bookShowCmd = &cobra.Command{
	Use:   "show <book-id>",
	Short: "Show a book with its rating statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		var detail models.BookDetail
		if _, err := client.decode(http.MethodGet, "/v1/book/"+url.PathEscape(args[0]), nil, &detail); err != nil {
			printError(err.Error())
			return err
		}

		fmt.Printf("%s\n", detail.Title)
		fmt.Printf("  by %s\n", detail.Author)
		fmt.Printf("  ID: %s\n", detail.ID)
		fmt.Printf("  Added: %s\n", detail.CreatedAt.Format("2006-01-02"))
		if detail.InFavourite {
			fmt.Println("  ♥ In your favourites")
		}
		fmt.Printf("\n%s\n\n", detail.Description)
		printStatistics(detail.Rating)
		return nil
	},
}

var bookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		var book models.Book
		msg, err := client.decode(http.MethodPost, "/v1/book", models.AddBookRequest{
			Title:       bookTitle,
			Author:      bookAuthor,
			Description: bookDescription,
			CoverFile:   bookCover,
			PDFFile:     bookPDF,
		}, &book)
		if err != nil {
			printError("Failed to add book: " + err.Error())
			return err
		}

		printSuccess(msg)
		fmt.Printf("Book ID: %s\n", book.ID)
		return nil
	},
}

var bookDeleteCmd = &cobra.Command{
	Use:   "delete <book-id>",
	Short: "Delete a book you added",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		msg, err := client.decode(http.MethodDelete, "/v1/book/"+url.PathEscape(args[0]), nil, nil)
		if err != nil {
			printError("Failed to delete book: " + err.Error())
			return err
		}
		printSuccess(msg)
		return nil
	},
}

var bookRateCmd = &cobra.Command{
	Use:   "rate <book-id> <1-5>",
	Short: "Rate a book",
	Long:  `Rate a book from 1 to 5 stars. Rating again replaces your previous rating.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		// sent as a JSON string; the server does the validation
		msg, err := client.decode(http.MethodPost, "/v1/book/rating", map[string]interface{}{
			"book":   args[0],
			"rating": args[1],
		}, nil)
		if err != nil {
			printError("Failed to rate book: " + err.Error())
			return err
		}
		printSuccess(msg)
		return nil
	},
}

var bookFavouriteCmd = &cobra.Command{
	Use:     "favourite <book-id>",
	Aliases: []string{"fav"},
	Short:   "Add or remove a book from your favourites",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		msg, err := client.decode(http.MethodPost, "/v1/book/"+url.PathEscape(args[0])+"/favourite", nil, nil)
		if err != nil {
			printError("Failed to toggle favourite: " + err.Error())
			return err
		}
		printSuccess(msg)
		return nil
	},
}

var bookFavouritesCmd = &cobra.Command{
	Use:   "favourites",
	Short: "List your favourite books",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		var books []models.Book
		if _, err := client.decode(http.MethodGet, "/v1/book/favourites", nil, &books); err != nil {
			printError("Failed to list favourites: " + err.Error())
			return err
		}

		if len(books) == 0 {
			fmt.Println("You have no favourites yet.")
			return nil
		}
		fmt.Printf("%d favourite(s):\n\n", len(books))
		printBooks(books)
		return nil
	},
}

var bookStatsCmd = &cobra.Command{
	Use:   "stats <book-id>",
	Short: "Show rating statistics for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		var stats models.RatingStatistics
		if _, err := client.decode(http.MethodGet, "/v1/book/"+url.PathEscape(args[0])+"/statistics", nil, &stats); err != nil {
			printError(err.Error())
			return err
		}
		printStatistics(stats)
		return nil
	},
}

var bookWatchCmd = &cobra.Command{
	Use:   "watch <book-id>",
	Short: "Follow rating changes of a book live",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		wsURL := strings.Replace(client.baseURL, "http", "ws", 1) +
			"/v1/book/" + url.PathEscape(args[0]) + "/live?token=" + url.QueryEscape(client.token)
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			printError("Failed to connect: " + err.Error())
			return err
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		go func() {
			<-interrupt
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		}()

		printInfo("Watching book, press Ctrl+C to stop")
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil
			}

			var ev struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}

			switch ev.Type {
			case "snapshot", "rating.updated":
				var stats models.RatingStatistics
				if err := json.Unmarshal(ev.Data, &stats); err == nil {
					fmt.Printf("\n[%s]\n", ev.Type)
					printStatistics(stats)
				}
			case "book.deleted":
				printInfo("The book was deleted")
				return nil
			}
		}
	},
}

func init() {
	bookAddCmd.Flags().StringVarP(&bookTitle, "title", "t", "", "Book title")
	bookAddCmd.Flags().StringVarP(&bookAuthor, "author", "a", "", "Book author")
	bookAddCmd.Flags().StringVarP(&bookDescription, "description", "d", "", "Book description")
	bookAddCmd.Flags().StringVar(&bookCover, "cover", "", "Cover file reference")
	bookAddCmd.Flags().StringVar(&bookPDF, "pdf", "", "PDF file reference")
	bookAddCmd.MarkFlagRequired("title")
	bookAddCmd.MarkFlagRequired("author")
	bookAddCmd.MarkFlagRequired("description")

	bookCmd.AddCommand(bookListCmd)
	bookCmd.AddCommand(bookShowCmd)
	bookCmd.AddCommand(bookAddCmd)
	bookCmd.AddCommand(bookDeleteCmd)
	bookCmd.AddCommand(bookRateCmd)
	bookCmd.AddCommand(bookFavouriteCmd)
	bookCmd.AddCommand(bookFavouritesCmd)
	bookCmd.AddCommand(bookStatsCmd)
	bookCmd.AddCommand(bookWatchCmd)
}
