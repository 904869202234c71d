// Package seed populates an empty database with the starter tip catalogue.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/id"
	"github.com/swastiapp/swasti-server/internal/store"
)

const authorEmail = "team@swasti.app"

// starter is one catalogue entry. The author is filled in at insert time.
type starter struct {
	title       string
	description string
	category    string
	benefits    []string
	ingredients []string
	steps       []string
}

// Run inserts the starter catalogue under a "Swasti Team" author. It is
// idempotent: a database that already holds tips is left untouched.
func Run(ctx context.Context, db store.Store, logger *slog.Logger) error {
	existing, err := db.ListTips(ctx, store.TipQuery{Limit: 1})
	if err != nil {
		return fmt.Errorf("checking for existing tips: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Database already has tips, skipping seed")
		return nil
	}

	author, err := ensureAuthor(ctx, db)
	if err != nil {
		return err
	}

	for i, s := range starters {
		tipID, err := id.Generate("tip")
		if err != nil {
			return err
		}
		tip := &domain.Tip{
			ID:          tipID,
			Title:       s.title,
			Description: s.description,
			Category:    s.category,
			Benefits:    s.benefits,
			Ingredients: s.ingredients,
			Steps:       s.steps,
			AuthorID:    author.UserID,
			// Stagger creation times so newest-first ordering is stable.
			CreatedAt: time.Now().Add(-time.Duration(len(starters)-i) * time.Minute),
		}
		if err := db.CreateTip(ctx, tip); err != nil {
			return fmt.Errorf("inserting starter tip %q: %w", s.title, err)
		}
		if err := db.AdjustProfileTips(ctx, author.UserID, 1); err != nil {
			return err
		}
	}

	logger.Info("Starter catalogue seeded", "tips", len(starters), "author_id", author.UserID)
	return nil
}

// ensureAuthor creates the seed author account and profile, reusing them if
// a previous run already did.
func ensureAuthor(ctx context.Context, db store.Store) (*domain.Profile, error) {
	account, err := db.GetAccountByEmail(ctx, authorEmail)
	if err == nil {
		return db.GetProfile(ctx, account.ID)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account = &domain.Account{
		ID:        userID,
		Email:     authorEmail,
		Name:      "Swasti Team",
		Provider:  "password",
		CreatedAt: now,
		UpdatedAt: now,
	}
	account.MarkEmailVerified()
	if err := db.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	profile := domain.NewProfile(userID, account.Name, account.Email, "")
	if err := db.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

var starters = []starter{
	{
		title:       "Add ghee to your roti for better digestion",
		description: "Adding a teaspoon of ghee to your roti can enhance digestion and improve the absorption of nutrients. This traditional practice helps lubricate the digestive system and provides essential fatty acids.",
		category:    "Digestion & Gut Health",
		benefits: []string{
			"Enhances nutrient absorption",
			"Lubricates the digestive tract",
			"Provides essential fatty acids",
			"Reduces digestive discomfort",
		},
		steps: []string{
			"Take a freshly made roti",
			"Add 1 teaspoon of pure ghee while the roti is still hot",
			"Spread evenly and let it melt",
			"Consume while warm for maximum benefits",
		},
	},
	{
		title:       "Try ajwain water before meals for bloating",
		description: "A cup of ajwain (carom seeds) water 30 minutes before meals can reduce bloating and improve digestion. This simple remedy has been used for generations to alleviate gas and digestive discomfort.",
		category:    "Digestion & Gut Health",
		benefits: []string{
			"Reduces bloating and gas",
			"Improves digestion",
			"Alleviates stomach discomfort",
			"Stimulates appetite",
		},
		ingredients: []string{
			"1 teaspoon ajwain (carom seeds)",
			"1 cup water",
		},
		steps: []string{
			"Boil 1 cup of water",
			"Add 1 teaspoon of ajwain seeds",
			"Let it steep for 5 minutes",
			"Strain and drink 30 minutes before meals",
		},
	},
	{
		title:       "Turmeric milk before bed for better immunity",
		description: "A warm glass of milk with a pinch of turmeric and honey can boost immunity and promote better sleep. This golden milk recipe has been a staple in Indian households for centuries.",
		category:    "Immunity Boosting",
		benefits: []string{
			"Strengthens immune system",
			"Promotes better sleep",
			"Reduces inflammation",
			"Soothes sore throat",
		},
		ingredients: []string{
			"1 cup milk",
			"1/4 teaspoon turmeric powder",
			"1 teaspoon honey",
			"A pinch of black pepper (optional)",
		},
		steps: []string{
			"Heat milk until warm (not boiling)",
			"Add turmeric powder and a pinch of black pepper",
			"Stir well and remove from heat",
			"Add honey once the milk has cooled slightly",
			"Drink 30 minutes before bedtime",
		},
	},
	{
		title:       "Fennel seeds after meals for fresh breath",
		description: "Chewing a teaspoon of fennel seeds (saunf) after meals not only freshens breath but also aids digestion and prevents gas. This common practice in Indian households has multiple health benefits.",
		category:    "Digestion & Gut Health",
		benefits: []string{
			"Freshens breath naturally",
			"Aids digestion",
			"Prevents gas formation",
			"Contains essential nutrients",
		},
		ingredients: []string{
			"1 teaspoon fennel seeds",
		},
		steps: []string{
			"Take 1 teaspoon of fennel seeds after your meal",
			"Chew slowly for 1-2 minutes",
			"Swallow or discard as preferred",
		},
	},
	{
		title:       "Coconut oil massage for baby's skin health",
		description: "Regular massage with pure coconut oil keeps baby's skin moisturized and protected. This traditional practice strengthens the bond between mother and child while providing numerous health benefits.",
		category:    "Children's Health",
		benefits: []string{
			"Moisturizes and nourishes skin",
			"Improves blood circulation",
			"Strengthens mother-child bond",
			"Promotes better sleep for baby",
		},
		ingredients: []string{
			"Pure coconut oil (preferably organic)",
		},
		steps: []string{
			"Warm a small amount of coconut oil between your palms",
			"Gently massage your baby's body using circular motions",
			"Pay special attention to joints and folds",
			"Best done before bathing or bedtime",
			"Perform for 10-15 minutes daily",
		},
	},
	{
		title:       "Tulsi leaves for cough and cold",
		description: "Chewing 5-6 fresh tulsi (holy basil) leaves or drinking tulsi tea can help alleviate symptoms of cough and cold. Tulsi is known for its antibacterial and antiviral properties.",
		category:    "Immunity Boosting",
		benefits: []string{
			"Relieves cough and cold symptoms",
			"Boosts immunity",
			"Has antibacterial properties",
			"Reduces stress and anxiety",
		},
		ingredients: []string{
			"5-6 fresh tulsi leaves or 1 teaspoon dried tulsi",
			"1 cup water",
			"Honey (optional)",
		},
		steps: []string{
			"Boil water with fresh or dried tulsi leaves",
			"Simmer for 5 minutes",
			"Strain and add honey if desired",
			"Drink 2-3 times a day when suffering from cold",
		},
	},
	{
		title:       "Besan face pack for glowing skin",
		description: "A face pack made with besan (gram flour), turmeric, and yogurt can give you naturally glowing skin. This traditional beauty remedy has been used by Indian women for generations.",
		category:    "Skin Care & Beauty",
		benefits: []string{
			"Removes excess oil and impurities",
			"Brightens complexion",
			"Reduces tan and pigmentation",
			"Provides natural glow",
		},
		ingredients: []string{
			"2 tablespoons besan (gram flour)",
			"1/2 teaspoon turmeric powder",
			"1 tablespoon yogurt",
			"1 teaspoon honey (optional)",
		},
		steps: []string{
			"Mix all ingredients to form a smooth paste",
			"Apply evenly on clean face and neck",
			"Let it dry for 15-20 minutes",
			"Rinse with lukewarm water",
			"Use twice a week for best results",
		},
	},
	{
		title:       "Jeera water for weight management",
		description: "Drinking jeera (cumin) water regularly can aid in weight management and improve metabolism. This simple drink is packed with antioxidants and helps detoxify the body.",
		category:    "Women's Health",
		benefits: []string{
			"Aids in weight management",
			"Improves metabolism",
			"Helps detoxify the body",
			"Reduces bloating",
		},
		ingredients: []string{
			"1 teaspoon jeera (cumin seeds)",
			"1 cup water",
		},
		steps: []string{
			"Soak 1 teaspoon of jeera in water overnight",
			"Boil the water with soaked jeera in the morning",
			"Strain and drink on an empty stomach",
			"Consume daily for best results",
		},
	},
	{
		title:       "Brahmi tea for mental clarity",
		description: "Brahmi tea can enhance memory, reduce stress, and improve mental clarity. This Ayurvedic herb has been used for centuries to support cognitive function and mental wellbeing.",
		category:    "Mental Health",
		benefits: []string{
			"Enhances memory and concentration",
			"Reduces stress and anxiety",
			"Improves mental clarity",
			"Supports overall brain health",
		},
		ingredients: []string{
			"1 teaspoon dried brahmi leaves or powder",
			"1 cup water",
			"Honey or lemon (optional)",
		},
		steps: []string{
			"Boil water and add dried brahmi leaves or powder",
			"Simmer for 5-7 minutes",
			"Strain and add honey or lemon if desired",
			"Drink once daily, preferably in the morning",
		},
	},
	{
		title:       "Mustard oil massage for joint pain",
		description: "Warm mustard oil massage can provide relief from joint pain, especially during winter months. This traditional remedy improves blood circulation and reduces inflammation.",
		category:    "Women's Health",
		benefits: []string{
			"Relieves joint pain and stiffness",
			"Improves blood circulation",
			"Reduces inflammation",
			"Warms the body during cold weather",
		},
		ingredients: []string{
			"2 tablespoons mustard oil",
			"2-3 garlic cloves (optional)",
			"1/2 teaspoon turmeric (optional)",
		},
		steps: []string{
			"Warm mustard oil (with garlic and turmeric if using)",
			"Apply on affected joints",
			"Massage gently in circular motions for 10-15 minutes",
			"Cover with warm cloth after massage",
			"Best done before bedtime",
		},
	},
}
