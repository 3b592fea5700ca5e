package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoListingRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewMongoListingRepository creates a listing repository over a Mongo collection.
// Reports and views use $addToSet with $inc guarded by $ne so each id counts once.
func NewMongoListingRepository(db *mongo.Database) ListingRepository {
	return &mongoListingRepository{
		coll: db.Collection(database.CollectionListings),
		log:  observability.NewRepoLogger(database.CollectionListings),
	}
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	defer observability.TrackQuery("create", "listings")()

	listing.Normalize()
	if _, err := r.coll.InsertOne(ctx, listing); err != nil {
		r.log.LogError(ctx, err, "create")
		return mongoError(err, "Listing", listing.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"listing_id": listing.ID, "category": listing.Category})
	return nil
}

func (r *mongoListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	defer observability.TrackQuery("get", "listings")()

	var listing models.Listing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		return nil, mongoError(err, "Listing", id)
	}
	listing.Normalize()
	return &listing, nil
}

func (r *mongoListingRepository) List(ctx context.Context) ([]models.Listing, error) {
	defer observability.TrackQuery("list", "listings")()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, mongoError(err, "Listing", "*")
	}
	defer cur.Close(ctx)

	listings := []models.Listing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, mongoError(err, "Listing", "*")
	}
	for i := range listings {
		listings[i].Normalize()
	}
	return listings, nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "listings")()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return mongoError(err, "Listing", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"listing_id": id, "rows": res.DeletedCount})
	return nil
}

func (r *mongoListingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return mongoError(err, "Listing", id)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	return nil
}

func (r *mongoListingRepository) AddReport(ctx context.Context, id, reporterID string) (bool, int, error) {
	defer observability.TrackQuery("add_report", "listings")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, dbSystemMongo, "AddReport", "listings")
	defer span.End()

	listing, added, err := r.addToSet(ctx, id, "reports", "reports_count", reporterID)
	if err != nil {
		r.log.LogError(ctx, err, "add_report")
		return false, 0, err
	}
	return added, listing.ReportsCount, nil
}

func (r *mongoListingRepository) AddView(ctx context.Context, id, viewerID string) (bool, int, error) {
	defer observability.TrackQuery("add_view", "listings")()

	listing, added, err := r.addToSet(ctx, id, "viewed_by", "views", viewerID)
	if err != nil {
		r.log.LogError(ctx, err, "add_view")
		return false, 0, err
	}
	return added, listing.Views, nil
}

// addToSet adds member to setField and increments counterField in one update,
// only when member is absent. It returns the listing after the operation.
func (r *mongoListingRepository) addToSet(ctx context.Context, id, setField, counterField, member string) (*models.Listing, bool, error) {
	filter := bson.M{"_id": id, setField: bson.M{"$ne": member}}
	update := bson.M{
		"$addToSet": bson.M{setField: member},
		"$inc":      bson.M{counterField: 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		return &listing, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, mongoError(err, "Listing", id)
	}

	// Either the listing is gone or member was already in the set.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

type mongoProfileRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewMongoProfileRepository creates a profile repository over a Mongo collection.
func NewMongoProfileRepository(db *mongo.Database) ProfileRepository {
	return &mongoProfileRepository{
		coll: db.Collection(database.CollectionProfiles),
		log:  observability.NewRepoLogger(database.CollectionProfiles),
	}
}

func (r *mongoProfileRepository) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&profile); err != nil {
		return nil, mongoError(err, "Profile", uid)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		r.log.LogError(ctx, err, "create")
		return mongoError(err, "Profile", profile.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"uid": profile.ID, "role": profile.Role})
	return nil
}

func (r *mongoProfileRepository) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$set": bson.M{"is_blocked": blocked, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		r.log.LogError(ctx, err, "set_blocked")
		return mongoError(err, "Profile", uid)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Profile", uid)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"uid": uid, "is_blocked": blocked})
	return nil
}

func (r *mongoProfileRepository) IncrementReportsReceived(ctx context.Context, uid string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$inc": bson.M{"total_reports_received": 1}})
	if err != nil {
		return mongoError(err, "Profile", uid)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Profile", uid)
	}
	return nil
}

type mongoAccountRepository struct {
	coll *mongo.Collection
}

// NewMongoAccountRepository creates an account repository over a Mongo collection.
func NewMongoAccountRepository(db *mongo.Database) AccountRepository {
	return &mongoAccountRepository{coll: db.Collection(database.CollectionAccounts)}
}

func (r *mongoAccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = normalizeEmail(account.Email)
	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		return mongoError(err, "Account", account.ID)
	}
	return nil
}

func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		return nil, mongoError(err, "Account", id)
	}
	return &account, nil
}

func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = normalizeEmail(email)
	var account models.Account
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&account); err != nil {
		return nil, mongoError(err, "Account", email)
	}
	return &account, nil
}
