package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/testutil/upstream"
)

const collection = "type-produits"

func newTypeProduitClient(t *testing.T) (*Client[domain.TypeProduit], *upstream.Server) {
	t.Helper()
	srv := upstream.New()
	t.Cleanup(srv.Close)
	return NewClient[domain.TypeProduit](srv.BaseURL(), collection), srv
}

func TestClient_ListAll_OmitsAbsentPagination(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	srv.Seed(collection, map[string]any{"nomTypeProduit": "Épicerie"})
	srv.Seed(collection, map[string]any{"nomTypeProduit": "Boissons"})

	items, err := client.ListAll(context.Background(), &domain.Pagination{Sort: "nomTypeProduit"})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].NomTypeProduit != "Boissons" {
		t.Fatalf("expected sorted result, got %+v", items)
	}

	req := srv.LastRequest()
	if req.Path != "/api/type-produits" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	if req.Query.Get("sort") != "nomTypeProduit" {
		t.Fatalf("sort not sent: %v", req.Query)
	}
	for _, key := range []string{"page", "limit", "order"} {
		if req.Query.Has(key) {
			t.Fatalf("absent %s must not be sent: %v", key, req.Query)
		}
	}
}

func TestClient_ListAll_NilPagination(t *testing.T) {
	client, srv := newTypeProduitClient(t)

	items, err := client.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d", len(items))
	}
	if len(srv.LastRequest().Query) != 0 {
		t.Fatalf("expected no query, got %v", srv.LastRequest().Query)
	}
}

func TestClient_ListPaginated(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	for _, name := range []string{"a", "b", "c"} {
		srv.Seed(collection, map[string]any{"nomTypeProduit": name})
	}

	page, err := client.ListPaginated(context.Background(), &domain.Pagination{Page: 2, Limit: 2, Order: domain.OrderAsc})
	if err != nil {
		t.Fatalf("ListPaginated: %v", err)
	}
	if page.Total != 3 || page.Page != 2 || page.Limit != 2 || page.TotalPages != 2 {
		t.Fatalf("unexpected metadata: %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].NomTypeProduit != "c" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if srv.LastRequest().Path != "/api/type-produits/paginated" {
		t.Fatalf("unexpected path %q", srv.LastRequest().Path)
	}
}

func TestClient_CreateThenGet_RoundTrip(t *testing.T) {
	client, _ := newTypeProduitClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, domain.TypeProduit{NomTypeProduit: "Hygiène"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected server-assigned id")
	}

	got, err := client.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NomTypeProduit != "Hygiène" || got.ID != created.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestClient_Update(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	id := srv.Seed(collection, map[string]any{"nomTypeProduit": "old"})

	updated, err := client.Update(context.Background(), id, domain.TypeProduit{NomTypeProduit: "new"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NomTypeProduit != "new" || updated.UpdatedAt == nil {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if req := srv.LastRequest(); req.Method != http.MethodPut || req.Path != "/api/type-produits/"+id {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestClient_GetByID_NotFound(t *testing.T) {
	client, _ := newTypeProduitClient(t)

	_, err := client.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Introuvable" {
		t.Fatalf("expected APIError with server message, got %#v", err)
	}
}

func TestClient_DeleteTwice(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	id := srv.Seed(collection, map[string]any{"nomTypeProduit": "x"})
	ctx := context.Background()

	if err := client.Delete(ctx, id); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := client.Delete(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestClient_Search(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	srv.Seed(collection, map[string]any{"nomTypeProduit": "Fruits"})
	srv.Seed(collection, map[string]any{"nomTypeProduit": "Légumes"})

	items, err := client.Search(context.Background(), "fru", &domain.Pagination{Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 || items[0].NomTypeProduit != "Fruits" {
		t.Fatalf("unexpected search result: %+v", items)
	}
	req := srv.LastRequest()
	if req.Path != "/api/type-produits/search" || req.Query.Get("q") != "fru" || req.Query.Get("limit") != "5" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestClient_AtPathOverride(t *testing.T) {
	client, srv := newTypeProduitClient(t)
	srv.Seed("archives", map[string]any{"nomTypeProduit": "ancien"})

	items, err := client.ListAll(context.Background(), nil, ports.AtPath("archives"))
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 1 || srv.LastRequest().Path != "/api/archives" {
		t.Fatalf("override not applied: %+v %q", items, srv.LastRequest().Path)
	}
	if client.Path() != collection {
		t.Fatalf("bound path must not change, got %q", client.Path())
	}
}

func TestClient_BearerFromContext(t *testing.T) {
	client, srv := newTypeProduitClient(t)

	ctx := WithBearer(context.Background(), "tok")
	if _, err := client.ListAll(ctx, nil); err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if got := srv.LastRequest().Authorization; got != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer ts.Close()

	client := NewClient[domain.TypeProduit](ts.URL, collection)
	_, err := client.ListAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	if msg := domain.UserMessage(err, "fallback"); msg != "boom" {
		t.Fatalf("expected server message, got %q", msg)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := upstream.New()
	base := srv.BaseURL()
	srv.Close()

	client := NewClient[domain.TypeProduit](base, collection)
	_, err := client.GetByID(context.Background(), "1")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if msg := domain.UserMessage(err, "Erreur lors du chargement"); msg != "Erreur lors du chargement" {
		t.Fatalf("expected fallback message, got %q", msg)
	}
}
