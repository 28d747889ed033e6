package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/clients"
	"auction-house/internal/domain/commission"

	"gorm.io/gorm"
)

type seedLot struct {
	artist, title, category, subject, dimensions, description string
	year                                                      int
	low, high, reserve                                        float64
	seller                                                    int // index into the seeded sellers
}

var seedLots = []seedLot{
	{"David Hockney", "Coastal Morning Light", "Painting", "Seascape", "120 x 150 cm", "A stunning depiction of early morning light reflecting off calm coastal waters.", 2018, 45000, 65000, 42000, 0},
	{"Banksy", "Urban Fragments", "Painting", "Abstract", "100 x 100 cm", "A provocative commentary on modern urban life.", 2020, 85000, 120000, 80000, 1},
	{"Joan Miró", "Summer Garden", "Painting", "Landscape", "80 x 100 cm", "Vibrant garden scene with biomorphic forms and brilliant primary colours.", 1965, 150000, 200000, 145000, 2},
	{"Lucian Freud", "Portrait of a Lady", "Painting", "Portrait", "60 x 50 cm", "Intimate portrait of great psychological intensity.", 1995, 12000, 18000, 11000, 0},
	{"Lucian Freud", "Study of Hands", "Drawing", "Figure", "42 x 30 cm", "Detailed anatomical study in charcoal.", 1988, 8500, 12000, 8000, 1},
	{"Wassily Kandinsky", "Abstract Composition", "Drawing", "Abstract", "35 x 50 cm", "Pioneering abstract work in ink.", 1923, 18000, 25000, 17000, 2},
	{"Henry Moore", "Abstract Form No. 7", "Sculpture", "Abstract", "85 x 60 x 40 cm", "Monumental bronze exploring organic forms.", 1972, 220000, 280000, 210000, 2},
	{"Barbara Hepworth", "Reclining Figure", "Sculpture", "Figure", "45 x 90 x 35 cm", "Elegant marble sculpture.", 1968, 180000, 240000, 175000, 1},
	{"Andreas Gursky", "Urban Landscape #12", "Photography", "Landscape", "120 x 180 cm", "Large-scale photograph printed on archival paper.", 2019, 35000, 45000, 33000, 2},
	{"Annie Leibovitz", "Portrait Series III", "Photography", "Portrait", "76 x 60 cm", "Black and white portrait from a celebrated series.", 2017, 18000, 25000, 17000, 1},
	{"Grinling Gibbons", "Forest Spirit", "Carving", "Figure", "65 x 45 x 30 cm", "Carved oak panel depicting a woodland scene.", 1680, 28000, 38000, 26000, 0},
	{"Unknown", "Celtic Cross", "Carving", "Other", "45 x 30 x 15 cm", "Victorian revival carved beech cross with Celtic knotwork.", 1850, 5500, 8000, 5000, 0},
}

// Seed loads a demo data set: a staff account, a handful of clients, upcoming
// and past auctions and a catalogue of lots. It does nothing when auctions
// already exist.
func Seed(ctx context.Context, db *gorm.DB, staffPassword string) error {
	var n int64
	if err := db.WithContext(ctx).Model(&auctions.Auction{}).Count(&n).Error; err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if n > 0 {
		slog.Info("seed skipped, database already has auctions", "auctions", n)
		return nil
	}

	people := clients.NewService(db)
	staff, err := people.Register(ctx, clients.RegisterInput{
		Name: "Fotherby's Staff", Email: "staff@fotherbys.example", Password: staffPassword, ClientType: clients.Joint,
	})
	if err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}
	if err := db.WithContext(ctx).Model(staff).Update("is_staff", true).Error; err != nil {
		return fmt.Errorf("promote staff: %w", err)
	}

	var sellers []*clients.Client
	for _, s := range []clients.RegisterInput{
		{Name: "Lady Margaret Thornbury", Email: "m.thornbury@example.com", Phone: "+44 20 7235 8000", Address: "15 Belgrave Square, London", ClientType: clients.Seller},
		{Name: "Sir Robert Ashford", Email: "r.ashford@example.com", Phone: "+44 1451 820123", Address: "Ashford Manor, Cotswolds", ClientType: clients.Seller},
		{Name: "Madame Élise Dubois", Email: "e.dubois@example.com", Phone: "+33 1 53 67 89 00", Address: "8 Avenue Montaigne, Paris", ClientType: clients.Seller},
	} {
		s.Password = staffPassword
		c, err := people.Register(ctx, s)
		if err != nil {
			return fmt.Errorf("seed client %s: %w", s.Email, err)
		}
		sellers = append(sellers, c)
	}
	if _, err := people.Register(ctx, clients.RegisterInput{
		Name: "James Wellington III", Email: "j.wellington@example.com", Password: staffPassword, ClientType: clients.Buyer,
	}); err != nil {
		return fmt.Errorf("seed buyer: %w", err)
	}

	manager := auctions.NewAuctionManager(db, auctions.Options{})
	today := commission.DateOf(time.Now())
	theme := func(s string) *string { return &s }

	var upcoming []*auctions.Auction
	for _, in := range []auctions.AuctionInput{
		{Title: "21st Century British Art", Location: auctions.London, AuctionDate: today.AddDate(0, 0, 30), StartTime: auctions.Evening, AuctionType: "Physical", Theme: theme("Contemporary British artists including landscapes and portraits")},
		{Title: "Post-War European Masters", Location: auctions.Paris, AuctionDate: today.AddDate(0, 0, 45), StartTime: auctions.Evening, AuctionType: "Physical", Theme: theme("Major works from post-war European artists")},
		{Title: "Modern American Art", Location: auctions.NewYork, AuctionDate: today.AddDate(0, 0, 60), StartTime: auctions.Afternoon, AuctionType: "Physical"},
		{Title: "Online Fine Art Sale", Location: auctions.London, AuctionDate: today.AddDate(0, 0, 15), StartTime: auctions.Morning, AuctionType: "Online", Theme: theme("Accessible fine art for emerging collectors")},
	} {
		a, err := manager.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("seed auction %q: %w", in.Title, err)
		}
		upcoming = append(upcoming, a)
	}

	// Past sales cannot go through Create, which rejects past dates.
	past := []auctions.Auction{
		{Title: "Impressionist & Modern Art", Location: auctions.London, AuctionDate: today.AddDate(0, 0, -90), StartTime: auctions.Evening, AuctionType: auctions.TypePhysical, Status: auctions.Completed},
		{Title: "Contemporary Sculpture", Location: auctions.Paris, AuctionDate: today.AddDate(0, 0, -45), StartTime: auctions.Afternoon, AuctionType: auctions.TypePhysical, Status: auctions.Completed},
	}
	if err := db.WithContext(ctx).Create(&past).Error; err != nil {
		return fmt.Errorf("seed past auctions: %w", err)
	}

	lots := auctions.NewLotManager(db, auctions.Options{})
	for i, s := range seedLots {
		year := s.year
		seller := sellers[s.seller].ID
		l, err := lots.Create(ctx, auctions.LotInput{
			LotReference:     fmt.Sprintf("%08d", 24000100+i),
			Artist:           s.artist,
			Title:            s.title,
			Category:         s.category,
			Subject:          s.subject,
			Dimensions:       s.dimensions,
			Description:      s.description,
			YearOfProduction: &year,
			EstimateLow:      s.low,
			EstimateHigh:     s.high,
			ReservePrice:     s.reserve,
			SellerID:         &seller,
		})
		if err != nil {
			return fmt.Errorf("seed lot %q: %w", s.title, err)
		}

		target := upcoming[0]
		switch {
		case s.low < 20000 || s.category == "Photography":
			target = upcoming[3]
		case s.artist == "Joan Miró" || s.artist == "Wassily Kandinsky":
			target = upcoming[1]
		}
		if _, err := lots.AssignToAuction(ctx, l.ID, target.ID); err != nil {
			return fmt.Errorf("list lot %q: %w", s.title, err)
		}
	}

	slog.Info("seed complete", "auctions", len(upcoming)+len(past), "lots", len(seedLots))
	return nil
}
