package domain

import "time"

// SeedAccount is a credentialed identity present before any registration.
type SeedAccount struct {
	User     User
	Password string
}

// SeedAccounts returns the built-in identities. The same password is used for
// both so the demo catalog can be explored without registering.
func SeedAccounts(now time.Time) []SeedAccount {
	return []SeedAccount{
		{
			User: User{
				ID:        "1",
				Email:     "admin@example.com",
				Name:      "Admin User",
				Role:      RoleAdmin,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Password: "password123",
		},
		{
			User: User{
				ID:        "2",
				Email:     "user@example.com",
				Name:      "Regular User",
				Role:      RoleUser,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Password: "password123",
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedBooks returns the default catalog used when nothing has been persisted.
func SeedBooks() []Book {
	return []Book{
		{
			ID:              "1",
			Title:           "The Design of Everyday Things",
			Author:          "Don Norman",
			Cover:           "https://images.unsplash.com/photo-1544947950-fa07a98d237f?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0465050659",
			Description:     "A powerful primer on how, and why, some products satisfy customers while others only frustrate them.",
			Genre:           []string{"Design", "Psychology"},
			PublicationYear: 2013,
			Publisher:       "Basic Books",
			Pages:           368,
			Language:        "English",
			CreatedAt:       day("2023-01-15"),
			UpdatedAt:       day("2023-01-15"),
		},
		{
			ID:              "2",
			Title:           "Thinking, Fast and Slow",
			Author:          "Daniel Kahneman",
			Cover:           "https://images.unsplash.com/photo-1589998059171-988d887df646?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0374533557",
			Description:     "A landmark work that offers a new understanding of how we think and make choices.",
			Genre:           []string{"Psychology", "Economics"},
			PublicationYear: 2011,
			Publisher:       "Farrar, Straus and Giroux",
			Pages:           499,
			Language:        "English",
			CreatedAt:       day("2023-01-20"),
			UpdatedAt:       day("2023-01-20"),
		},
		{
			ID:              "3",
			Title:           "Clean Code",
			Author:          "Robert C. Martin",
			Cover:           "https://images.unsplash.com/photo-1555066931-4365d14bab8c?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0132350884",
			Description:     "A handbook of agile software craftsmanship that helps you create more robust, manageable code.",
			Genre:           []string{"Programming", "Computer Science"},
			PublicationYear: 2008,
			Publisher:       "Prentice Hall",
			Pages:           464,
			Language:        "English",
			Loan:            &Loan{BorrowerID: "2", DueAt: day("2023-12-25")},
			CreatedAt:       day("2023-02-10"),
			UpdatedAt:       day("2023-02-10"),
		},
		{
			ID:              "4",
			Title:           "Sapiens: A Brief History of Humankind",
			Author:          "Yuval Noah Harari",
			Cover:           "https://images.unsplash.com/photo-1615485290382-441e4d049cb5?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0062316097",
			Description:     "A provocative exploration of the development of human societies.",
			Genre:           []string{"History", "Anthropology"},
			PublicationYear: 2015,
			Publisher:       "Harper",
			Pages:           443,
			Language:        "English",
			CreatedAt:       day("2023-02-15"),
			UpdatedAt:       day("2023-02-15"),
		},
		{
			ID:              "5",
			Title:           "Atomic Habits",
			Author:          "James Clear",
			Cover:           "https://images.unsplash.com/photo-1535398089889-dd807df1dfaa?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0735211292",
			Description:     "A guide to building good habits and breaking bad ones using proven strategies.",
			Genre:           []string{"Self-Help", "Psychology"},
			PublicationYear: 2018,
			Publisher:       "Avery",
			Pages:           320,
			Language:        "English",
			CreatedAt:       day("2023-03-01"),
			UpdatedAt:       day("2023-03-01"),
		},
		{
			ID:              "6",
			Title:           "Dune",
			Author:          "Frank Herbert",
			Cover:           "https://images.unsplash.com/photo-1608346128025-1896b97a6fa7?auto=format&fit=crop&q=80&w=1000",
			ISBN:            "978-0441172719",
			Description:     "A science fiction masterpiece set in a distant future amidst a feudal interstellar society.",
			Genre:           []string{"Science Fiction", "Fantasy"},
			PublicationYear: 1965,
			Publisher:       "Ace Books",
			Pages:           412,
			Language:        "English",
			CreatedAt:       day("2023-03-15"),
			UpdatedAt:       day("2023-03-15"),
		},
	}
}
