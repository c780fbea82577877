package storefront

import (
	"context"
	"fmt"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
)

// product: документ каталога витрины; цена в основных единицах.
type product struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Price float64            `bson:"price"`
	Image []string           `bson:"image"`
}

func (p product) toCatalog() (service.CatalogProduct, error) {
	cents, err := models.ToCents(p.Price)
	if err != nil {
		return service.CatalogProduct{}, fmt.Errorf("product %s: %w", p.ID.Hex(), err)
	}
	cp := service.CatalogProduct{ID: p.ID.Hex(), Name: p.Name, PriceCents: cents}
	if len(p.Image) > 0 {
		cp.Image = p.Image[0]
	}
	return cp, nil
}

// parseObjectIDs отбрасывает некорректные id: такие товары считаются ненайденными.
func parseObjectIDs(ids []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		if _, ok := seen[oid]; ok {
			continue
		}
		seen[oid] = struct{}{}
		out = append(out, oid)
	}
	return out
}

type Catalog struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewCatalog(db *mongo.Database, log *zap.Logger) *Catalog {
	return &Catalog{coll: db.Collection(productsCollection), log: log}
}

func (c *Catalog) GetProducts(ctx context.Context, ids []string) (map[string]service.CatalogProduct, error) {
	oids := parseObjectIDs(ids)
	out := make(map[string]service.CatalogProduct, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "price": 1, "image": 1})
	cursor, err := c.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p product
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		cp, err := p.toCatalog()
		if err != nil {
			c.log.Warn("Товар с некорректной ценой пропущен", zap.Error(err))
			continue
		}
		out[cp.ID] = cp
	}
	return out, cursor.Err()
}

// Carts очищает корзину, которая хранится в документе пользователя (cartData).
type Carts struct {
	coll *mongo.Collection
}

func NewCarts(db *mongo.Database) *Carts {
	return &Carts{coll: db.Collection(usersCollection)}
}

func (c *Carts) ResetCart(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("reset cart: invalid user id %q: %w", userID, err)
	}
	if _, err := c.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"cartData": bson.M{}}}); err != nil {
		return fmt.Errorf("reset cart: %w", err)
	}
	return nil
}

var (
	_ service.CatalogReader = (*Catalog)(nil)
	_ service.CartResetter  = (*Carts)(nil)
)
