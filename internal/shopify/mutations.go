package shopify

// ProductVariantsBulkUpdateMutation updates the prices of multiple variants
// belonging to one product. The mutation is scoped to a single product per
// call; updates spanning several products take one call each.
const ProductVariantsBulkUpdateMutation = `
mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    product {
      id
      title
    }
    productVariants {
      id
      price
    }
    userErrors {
      field
      message
    }
  }
}
`

// ProductUpdateMutation rewrites a product's title. Used by the title refresh job.
const ProductUpdateMutation = `
mutation updateProduct($id: ID!, $title: String!) {
  productUpdate(input: { id: $id, title: $title }) {
    product {
      id
      title
    }
    userErrors {
      field
      message
    }
  }
}
`

// VariantPriceInput is one ProductVariantsBulkInput entry: the variant to
// update and its new price as a monetary string.
type VariantPriceInput struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}
