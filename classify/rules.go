package classify

import "github.com/SirWilliamIII/wanderer"

// Categories in the closed set, beyond wanderer.CategoryGeneral.
const (
	CategoryGithub        wanderer.Category = "github"
	CategoryBigTechnology wanderer.Category = "big_technology"
	CategoryProgramming   wanderer.Category = "programming"
	CategoryNews          wanderer.Category = "news"
	CategoryEcommerce     wanderer.Category = "ecommerce"
	CategoryFinance       wanderer.Category = "finance"
	CategoryScience       wanderer.Category = "science"
	CategorySports        wanderer.Category = "sports"
	CategoryEntertainment wanderer.Category = "entertainment"
)

// DefaultRules returns the default ordered rule table, version 1.
//
// Ordering is deliberate and load-bearing: specific categories come before
// broad ones (github outranks big_technology even though github.com pages
// mention plenty of technology keywords). Treat edits as a new table
// version and keep the full list in one place.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: CategoryGithub,
			URLParts: []string{"github.com", "github.io", "gitlab.com"},
			Keywords: []string{"pull request", "repository fork", "git clone"},
		},
		{
			Category: CategoryBigTechnology,
			URLParts: []string{"google.com", "apple.com", "microsoft.com", "amazon.com", "meta.com"},
			Keywords: []string{"silicon valley", "big tech", "tech giant"},
		},
		{
			Category: CategoryProgramming,
			URLParts: []string{"stackoverflow.com", "/docs/", "/api/", "developer."},
			Keywords: []string{"programming", "software engineer", "source code", "compiler", "debugging"},
		},
		{
			Category: CategoryFinance,
			URLParts: []string{"bloomberg.com", "/finance/", "/markets/", "/investing/"},
			Keywords: []string{"stock market", "interest rate", "cryptocurrency", "earnings report"},
		},
		{
			Category: CategoryEcommerce,
			URLParts: []string{"/shop/", "/product/", "/store/", "/cart"},
			Keywords: []string{"add to cart", "free shipping", "checkout", "in stock"},
		},
		{
			Category: CategoryScience,
			URLParts: []string{"nature.com", "arxiv.org", "/science/", "/research/"},
			Keywords: []string{"peer review", "clinical trial", "researchers found", "study published"},
		},
		{
			Category: CategorySports,
			URLParts: []string{"espn.com", "/sports/", "/league/"},
			Keywords: []string{"championship", "playoffs", "season opener", "final score"},
		},
		{
			Category: CategoryEntertainment,
			URLParts: []string{"imdb.com", "/movies/", "/music/", "/celebrity/"},
			Keywords: []string{"box office", "red carpet", "season finale", "album release"},
		},
		{
			Category: CategoryNews,
			URLParts: []string{"/news/", "/world/", "/politics/", "reuters.com", "apnews.com"},
			Keywords: []string{"breaking news", "press conference", "correspondent", "reported on"},
		},
	}
}
