package shopify

// ProductsWithVariantsQuery fetches the first page of products with their
// variants. Only the first page is read; deeper pagination is a known
// boundary limitation of this app, not attempted here.
const ProductsWithVariantsQuery = `
query getProducts($first: Int!) {
  products(first: $first) {
    nodes {
      id
      title
      variants(first: 100) {
        nodes {
          id
          title
          price
        }
      }
    }
  }
}
`

// ProductTitlesQuery fetches product ids and titles for the title refresh job.
const ProductTitlesQuery = `
query getProductTitles($first: Int!) {
  products(first: $first) {
    nodes {
      id
      title
    }
  }
}
`
