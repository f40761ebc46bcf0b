package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/product"
	"github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/blob"
	"github.com/purushotam56/hatiri-storefront-service/pkg/cache"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
	"github.com/purushotam56/hatiri-storefront-service/pkg/search"
)

const productIndex = "products"

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	blobs  blob.Store
	tx     product.TxManager
	logger logger.ZapLogger
}

func NewProductUseCase(
	repo product.Repository,
	cache *cache.RedisClient,
	es *search.Client,
	blobs blob.Store,
	tx product.TxManager,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		blobs:  blobs,
		tx:     tx,
		logger: log,
	}
}

func (uc *productUseCase) CreateVariantGroup(ctx context.Context, input *dto.CreateVariantGroupInput) (*dto.VariantGroupResponse, error) {
	caller := auth.CallerFrom(ctx)
	if caller == nil {
		return nil, apperrors.Authorization("missing organisation context")
	}

	groupUnit := model.Unit(input.Unit)
	mergeType := model.StockMergeType(input.StockMergeType)
	if err := validateVariantGroupInput(groupUnit, mergeType, input.BaseStock, input.Variants); err != nil {
		return nil, err
	}

	now := time.Now()
	group := &model.ProductGroup{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrgID:          caller.OrgID,
		Name:           input.Name,
		BaseSKU:        input.BaseSKU,
		Unit:           groupUnit,
		StockMergeType: mergeType,
	}
	if input.Description != "" {
		desc := input.Description
		group.Description = &desc
	}
	if mergeType == model.StockMergeMerged {
		group.BaseStock = *input.BaseStock
	}
	uc.attachGroupMedia(group, input.BannerKey, input.GalleryKeys)

	variants := make([]model.Product, 0, len(input.Variants))
	for _, v := range input.Variants {
		sku := composeSKU(caller.OrgCode, input.BaseSKU, v.SKUSuffix)
		unique, err := uc.repo.IsSKUUnique(ctx, caller.OrgID, sku, "")
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperrors.Validation("SKU %s already exists", sku)
		}

		p := model.Product{
			BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			OrgID:         caller.OrgID,
			GroupID:       &group.ID,
			Name:          fmt.Sprintf("%s %s", input.Name, v.Label),
			SKU:           sku,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Unit:          model.Unit(v.Unit),
			Quantity:      v.Quantity,
			IsActive:      true,
		}
		if mergeType == model.StockMergeIndependent {
			p.Stock = *v.Stock
		}
		uc.attachVariantMedia(&p, group, v)
		variants = append(variants, p)
	}

	err := uc.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := uc.repo.CreateGroup(ctx, group); err != nil {
			return err
		}
		for i := range variants {
			if err := uc.repo.Create(ctx, &variants[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterWrite(caller.OrgID, variants)
	uc.logger.Info("variant group created",
		zap.String("group_id", group.ID),
		zap.String("merge_type", string(mergeType)),
		zap.Int("variants", len(variants)),
	)
	return buildGroupResponse(group, variants), nil
}

func (uc *productUseCase) UpdateVariantGroup(ctx context.Context, groupID string, input *dto.UpdateVariantGroupInput) (*dto.VariantGroupResponse, error) {
	caller := auth.CallerFrom(ctx)
	if caller == nil {
		return nil, apperrors.Authorization("missing organisation context")
	}

	group, err := uc.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperrors.NotFound("product group %s not found", groupID)
	}
	if group.OrgID != caller.OrgID {
		return nil, apperrors.Authorization("organisation does not own product group %s", groupID)
	}

	groupUnit := model.Unit(input.Unit)
	mergeType := model.StockMergeType(input.StockMergeType)
	// A merge-policy flip re-runs the full target-policy validation, so a
	// flip with missing stock data fails closed before anything is written.
	if err := validateVariantGroupInput(groupUnit, mergeType, input.BaseStock, input.Variants); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	existingByID := make(map[string]model.Product, len(existing))
	for _, p := range existing {
		existingByID[p.ID] = p
	}

	now := time.Now()
	group.Name = input.Name
	group.BaseSKU = input.BaseSKU
	group.Unit = groupUnit
	group.StockMergeType = mergeType
	group.Description = nil
	if input.Description != "" {
		desc := input.Description
		group.Description = &desc
	}
	group.BaseStock = 0
	if mergeType == model.StockMergeMerged {
		group.BaseStock = *input.BaseStock
	}
	group.UpdatedAt = now
	uc.attachGroupMedia(group, input.BannerKey, input.GalleryKeys)

	referenced := map[string]bool{}
	variants := make([]model.Product, 0, len(input.Variants))
	for _, v := range input.Variants {
		sku := composeSKU(caller.OrgCode, input.BaseSKU, v.SKUSuffix)

		var p model.Product
		if v.ID != "" {
			prev, ok := existingByID[v.ID]
			if !ok {
				return nil, apperrors.Validation("variant %s does not belong to product group %s", v.ID, groupID)
			}
			referenced[v.ID] = true
			p = prev
		} else {
			p = model.Product{
				BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now},
				OrgID:     caller.OrgID,
				GroupID:   &group.ID,
			}
		}

		unique, err := uc.repo.IsSKUUnique(ctx, caller.OrgID, sku, p.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperrors.Validation("SKU %s already exists", sku)
		}

		p.Name = fmt.Sprintf("%s %s", input.Name, v.Label)
		p.SKU = sku
		p.Price = v.Price
		p.DiscountPrice = v.DiscountPrice
		p.Unit = model.Unit(v.Unit)
		p.Quantity = v.Quantity
		p.IsActive = true
		p.UpdatedAt = now
		// Under merged policy every variant counter is zeroed in favor of
		// the shared pool; the flip back redistributes from the payload.
		p.Stock = 0
		if mergeType == model.StockMergeIndependent {
			p.Stock = *v.Stock
		}
		uc.attachVariantMedia(&p, group, v)
		variants = append(variants, p)
	}

	err = uc.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := uc.repo.UpdateGroup(ctx, group); err != nil {
			return err
		}
		for i := range variants {
			v := &variants[i]
			if _, ok := existingByID[v.ID]; ok {
				if err := uc.repo.Update(ctx, v); err != nil {
					return err
				}
				continue
			}
			if err := uc.repo.Create(ctx, v); err != nil {
				return err
			}
		}
		// Variants dropped from the payload are retired, not deleted, so
		// past orders keep a resolvable product reference.
		for _, prev := range existing {
			if referenced[prev.ID] {
				continue
			}
			prev.IsActive = false
			prev.Stock = 0
			prev.UpdatedAt = now
			if err := uc.repo.Update(ctx, &prev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterWrite(caller.OrgID, variants)
	return buildGroupResponse(group, variants), nil
}

func (uc *productUseCase) GetVariantGroup(ctx context.Context, groupID string) (*dto.VariantGroupResponse, error) {
	group, err := uc.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperrors.NotFound("product group %s not found", groupID)
	}
	variants, err := uc.repo.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return buildGroupResponse(group, variants), nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	caller := auth.CallerFrom(ctx)
	if caller == nil {
		return nil, apperrors.Authorization("missing organisation context")
	}
	if !model.IsValidUnit(model.Unit(input.Unit)) {
		return nil, apperrors.Validation("unknown unit %q", input.Unit)
	}

	sku := composeSKU(caller.OrgCode, input.SKUSuffix, "")
	unique, err := uc.repo.IsSKUUnique(ctx, caller.OrgID, sku, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperrors.Validation("SKU %s already exists", sku)
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrgID:         caller.OrgID,
		Name:          input.Name,
		SKU:           sku,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		Unit:          model.Unit(input.Unit),
		Quantity:      input.Quantity,
		IsActive:      true,
	}
	if input.BannerKey != "" {
		url := uc.blobs.Resolve(input.BannerKey)
		p.BannerURL = &url
	}
	p.GalleryURLs = uc.resolveGallery(input.GalleryKeys)

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), caller.OrgID)
	go uc.syncToElastic(context.Background(), p)
	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	caller := auth.CallerFrom(ctx)
	if caller == nil {
		return nil, apperrors.Authorization("missing organisation context")
	}

	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("product %s not found", input.ID)
	}
	if p.OrgID != caller.OrgID {
		return nil, apperrors.Authorization("organisation does not own product %s", input.ID)
	}
	if !model.IsValidUnit(model.Unit(input.Unit)) {
		return nil, apperrors.Validation("unknown unit %q", input.Unit)
	}

	p.Name = input.Name
	p.Price = input.Price
	p.DiscountPrice = input.DiscountPrice
	p.Unit = model.Unit(input.Unit)
	p.Quantity = input.Quantity
	p.IsActive = input.IsActive
	if p.IsStandalone() {
		// Grouped variants get their stock through the reconciliation
		// service or the group update workflow, never through this path.
		p.Stock = input.Stock
	}
	if input.BannerKey != "" {
		url := uc.blobs.Resolve(input.BannerKey)
		p.BannerURL = &url
	}
	if len(input.GalleryKeys) > 0 {
		p.GalleryURLs = uc.resolveGallery(input.GalleryKeys)
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), caller.OrgID)
	go uc.syncToElastic(context.Background(), p)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("product %s not found", id)
	}

	var group *model.ProductGroup
	if !p.IsStandalone() {
		group, err = uc.repo.GetGroupByID(ctx, *p.GroupID)
		if err != nil {
			return nil, err
		}
	}
	return &dto.ProductResponse{Product: *p, DisplayStock: p.DisplayStock(group)}, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]dto.ProductResponse, int, error) {
	cacheKey, cacheErr := uc.generateCacheKey(filters)
	if uc.cache != nil && cacheErr == nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached struct {
				Products []dto.ProductResponse
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Products, cached.Count, nil
			}
		}
	}

	products, count, err := uc.findProducts(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	responses, err := uc.resolveDisplayStock(ctx, products)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil && cacheErr == nil {
		payload := struct {
			Products []dto.ProductResponse
			Count    int
		}{Products: responses, Count: count}
		if data, err := json.Marshal(payload); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}
	return responses, count, nil
}

func (uc *productUseCase) findProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.SearchQuery != "" && uc.es != nil {
		must := []map[string]interface{}{
			{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
					"fields": []string{"name^3", "sku", "description"},
				},
			},
		}
		if filters.OrgID != "" {
			must = append(must, map[string]interface{}{
				"term": map[string]interface{}{"org_id": filters.OrgID},
			})
		}
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{"must": must},
			},
			"from": (filters.Page - 1) * filters.PageSize,
		}
		if filters.PageSize > 0 {
			q["size"] = filters.PageSize
		}

		res, err := uc.es.Search(ctx, productIndex, q)
		if err == nil {
			var products []model.Product
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					products = append(products, p)
				}
			}
			return products, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) resolveDisplayStock(ctx context.Context, products []model.Product) ([]dto.ProductResponse, error) {
	groupIDs := make([]string, 0)
	seen := map[string]bool{}
	for _, p := range products {
		if !p.IsStandalone() && !seen[*p.GroupID] {
			seen[*p.GroupID] = true
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	groupsByID := map[string]model.ProductGroup{}
	if len(groupIDs) > 0 {
		groups, err := uc.repo.FindGroupsByIDs(ctx, groupIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			groupsByID[g.ID] = g
		}
	}

	responses := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		var group *model.ProductGroup
		if !p.IsStandalone() {
			if g, ok := groupsByID[*p.GroupID]; ok {
				group = &g
			}
		}
		responses = append(responses, dto.ProductResponse{Product: p, DisplayStock: p.DisplayStock(group)})
	}
	return responses, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	caller := auth.CallerFrom(ctx)
	if caller == nil {
		return apperrors.Authorization("missing organisation context")
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}
	if p.OrgID != caller.OrgID {
		return apperrors.Authorization("organisation does not own product %s", id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), caller.OrgID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

// --- helpers ---

func composeSKU(orgCode, baseSKU, suffix string) string {
	return fmt.Sprintf("%s-%s%s", orgCode, baseSKU, suffix)
}

func validateVariantGroupInput(groupUnit model.Unit, mergeType model.StockMergeType, baseStock *int64, variants []dto.VariantInput) error {
	if !model.IsValidUnit(groupUnit) {
		return apperrors.Validation("unknown unit %q", groupUnit)
	}
	if mergeType != model.StockMergeMerged && mergeType != model.StockMergeIndependent {
		return apperrors.Validation("unknown stock merge type %q", mergeType)
	}
	if len(variants) < 2 {
		return apperrors.Validation("a variant group requires at least two variants, got %d", len(variants))
	}

	if mergeType == model.StockMergeMerged {
		if baseStock == nil {
			return apperrors.Validation("merged stock policy requires a group-level stock quantity")
		}
		if *baseStock < 0 {
			return apperrors.Validation("group-level stock cannot be negative")
		}
	}

	suffixes := map[string]bool{}
	for _, v := range variants {
		if v.Label == "" || v.SKUSuffix == "" {
			return apperrors.Validation("every variant requires a label and a SKU suffix")
		}
		if v.Price <= 0 {
			return apperrors.Validation("variant %s requires a positive price", v.Label)
		}
		if v.Quantity <= 0 {
			return apperrors.Validation("variant %s requires a positive quantity", v.Label)
		}
		if suffixes[v.SKUSuffix] {
			return apperrors.Validation("duplicate variant SKU suffix %q", v.SKUSuffix)
		}
		suffixes[v.SKUSuffix] = true

		variantUnit := model.Unit(v.Unit)
		if !model.IsValidUnit(variantUnit) {
			return apperrors.Validation("unknown unit %q for variant %s", v.Unit, v.Label)
		}
		if !model.AreUnitsCompatible(variantUnit, groupUnit) {
			return apperrors.Validation("variant %s unit %q is not compatible with group unit %q", v.Label, v.Unit, groupUnit)
		}

		if mergeType == model.StockMergeIndependent {
			if v.Stock == nil {
				return apperrors.Validation("independent stock policy requires a stock quantity for variant %s", v.Label)
			}
			if *v.Stock < 0 {
				return apperrors.Validation("variant %s stock cannot be negative", v.Label)
			}
		}
	}
	return nil
}

func (uc *productUseCase) attachGroupMedia(group *model.ProductGroup, bannerKey string, galleryKeys []string) {
	if bannerKey != "" {
		url := uc.blobs.Resolve(bannerKey)
		group.BannerURL = &url
	}
	if len(galleryKeys) > 0 {
		group.GalleryURLs = uc.resolveGallery(galleryKeys)
	}
}

// attachVariantMedia resolves the variant's media per the merge policy:
// merged groups share the group assets; independent variants carry their
// own unless they opt into the shared ones.
func (uc *productUseCase) attachVariantMedia(p *model.Product, group *model.ProductGroup, v dto.VariantInput) {
	if group.StockMergeType == model.StockMergeMerged || v.UseSharedMedia {
		p.BannerURL = group.BannerURL
		p.GalleryURLs = group.GalleryURLs
		return
	}
	p.BannerURL = nil
	if v.BannerKey != "" {
		url := uc.blobs.Resolve(v.BannerKey)
		p.BannerURL = &url
	}
	p.GalleryURLs = uc.resolveGallery(v.GalleryKeys)
}

func (uc *productUseCase) resolveGallery(keys []string) pq.StringArray {
	if len(keys) == 0 {
		return nil
	}
	urls := make(pq.StringArray, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, uc.blobs.Resolve(key))
	}
	return urls
}

func buildGroupResponse(group *model.ProductGroup, variants []model.Product) *dto.VariantGroupResponse {
	responses := make([]dto.ProductResponse, 0, len(variants))
	for _, v := range variants {
		responses = append(responses, dto.ProductResponse{Product: v, DisplayStock: v.DisplayStock(group)})
	}
	return &dto.VariantGroupResponse{Group: group, Variants: responses}
}

func (uc *productUseCase) afterWrite(orgID string, variants []model.Product) {
	go uc.invalidateProductCache(context.Background(), orgID)
	for i := range variants {
		v := variants[i]
		go uc.syncToElastic(context.Background(), &v)
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.OrgID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, orgID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("products:list:%s:*", orgID)
	keys, err := uc.cache.Client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	mapping := `{
		"mappings": {
			"properties": {
				"org_id": { "type": "keyword" },
				"group_id": { "type": "keyword" },
				"name": { "type": "text" },
				"sku": { "type": "keyword" },
				"price": { "type": "double" },
				"unit": { "type": "keyword" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productIndex, mapping)

	if err := uc.es.Index(ctx, productIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}
