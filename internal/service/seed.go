package service

import (
	"github.com/maisonluxe/storefront/internal/entity"
)

// SeedCatalog is the initial product set for a fresh install.
func SeedCatalog() []entity.Product {
	return []entity.Product{
		{ID: "prod-001", Name: "Handwoven Silk Scarf", Description: "Mulberry silk with hand-rolled edges, woven on traditional looms.", Price: 4899, ImageURL: "https://images.unsplash.com/photo-1601924994987-69e26d50dc26?w=400", Category: "Accessories", Stock: 60},
		{ID: "prod-002", Name: "Italian Leather Tote", Description: "Full-grain vegetable-tanned leather with brass hardware.", Price: 18999, ImageURL: "https://images.unsplash.com/photo-1590874103328-eac38a683ce7?w=400", Category: "Bags", Stock: 25},
		{ID: "prod-003", Name: "Cashmere Crewneck", Description: "Two-ply Mongolian cashmere, garment dyed.", Price: 12499, ImageURL: "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=400", Category: "Knitwear", Stock: 40},
		{ID: "prod-004", Name: "Automatic Dress Watch", Description: "Sapphire crystal, 38mm case, exhibition caseback.", Price: 45999, ImageURL: "https://images.unsplash.com/photo-1524592094714-0f0654e20314?w=400", Category: "Watches", Stock: 12},
		{ID: "prod-005", Name: "Gold Vermeil Hoops", Description: "18k gold vermeil over recycled sterling silver.", Price: 6499, ImageURL: "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=400", Category: "Jewellery", Stock: 80},
		{ID: "prod-006", Name: "Linen Resort Shirt", Description: "European flax, mother-of-pearl buttons, relaxed cut.", Price: 5299, ImageURL: "https://images.unsplash.com/photo-1596755094514-f87e34085b2c?w=400", Category: "Apparel", Stock: 100},
	}
}
