package inventory

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.Connect(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("não abriu o banco de teste: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate falhou: %v", err)
	}
	return db
}

func createItem(t *testing.T, db *gorm.DB, name string, quantity int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:     name,
		Category: "rede",
		Quantity: quantity,
		Status:   models.ItemActive,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("não criou item: %v", err)
	}
	return item
}

func itemQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var item models.InventoryItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		t.Fatalf("não carregou item %d: %v", id, err)
	}
	return item.Quantity
}

func TestCreateTransactionAppliesSignedDelta(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "ONU GPON", 0)

	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 12,
	}); err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}
	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionOut, Quantity: 5,
	}); err != nil {
		t.Fatalf("saída falhou: %v", err)
	}

	if got := itemQuantity(t, db, item.ID); got != 7 {
		t.Errorf("quantity = %d, esperado 7", got)
	}

	// Invariante: cache == soma do razão
	balance, err := LedgerBalance(db, item.ID)
	if err != nil {
		t.Fatalf("LedgerBalance: %v", err)
	}
	if balance != 7 {
		t.Errorf("saldo do razão = %d, esperado 7", balance)
	}
}

func TestCreateTransactionItemNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: 999, Type: models.TransactionIn, Quantity: 1,
	})
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, esperado ErrItemNotFound", err)
	}
}

func TestCreateOutRejectsInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Roteador", 5)

	_, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionOut, Quantity: 6,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, esperado ErrInsufficientStock", err)
	}

	// Nada pode ter sido persistido
	if got := itemQuantity(t, db, item.ID); got != 5 {
		t.Errorf("quantity = %d, esperado 5 (inalterado)", got)
	}
	var count int64
	db.Model(&models.InventoryTransaction{}).Where("item_id = ?", item.ID).Count(&count)
	if count != 0 {
		t.Errorf("transações persistidas = %d, esperado 0", count)
	}
}

func TestCreateRejectsInvalidQuantityAndType(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Conector", 0)

	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 0,
	}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantity 0: err = %v, esperado ErrInvalidQuantity", err)
	}

	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: "transfer", Quantity: 1,
	}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("type invalido: err = %v, esperado ErrInvalidType", err)
	}
}

func TestUpdateReversesOldEffectBeforeApplyingNew(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Drop fibra", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}
	if got := itemQuantity(t, db, item.ID); got != 10 {
		t.Fatalf("quantity = %d, esperado 10", got)
	}

	// 10 -> 4: estorno do 10 + aplicação do 4. Um implementação ingênua
	// daria 14 (sem estorno) ou 6 (delta do delta aplicado errado).
	newQty := 4
	if _, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{Quantity: &newQty}); err != nil {
		t.Fatalf("update falhou: %v", err)
	}

	if got := itemQuantity(t, db, item.ID); got != 4 {
		t.Errorf("quantity = %d, esperado 4", got)
	}
}

func TestUpdateIncreaseAllowedAfterDrawDown(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Conector APC", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}
	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionOut, Quantity: 7,
	}); err != nil {
		t.Fatalf("saída falhou: %v", err)
	}
	if got := itemQuantity(t, db, item.ID); got != 3 {
		t.Fatalf("quantity = %d, esperado 3", got)
	}

	// Corrigir o in(10) para in(15) com saldo corrente 3: o estorno
	// intermediário (3-10) não interessa, só o saldo final (3-10+15=8).
	newQty := 15
	if _, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{Quantity: &newQty}); err != nil {
		t.Fatalf("update in(10)->in(15) falhou com saldo corrente 3: %v", err)
	}

	if got := itemQuantity(t, db, item.ID); got != 8 {
		t.Errorf("quantity = %d, esperado 8", got)
	}
	balance, err := LedgerBalance(db, item.ID)
	if err != nil {
		t.Fatalf("LedgerBalance: %v", err)
	}
	if balance != 8 {
		t.Errorf("razão = %d, esperado 8", balance)
	}
}

func TestUpdateMoveRejectedWhenSourceFinalBalanceNegative(t *testing.T) {
	db := newTestDB(t)
	itemA := createItem(t, db, "Patch cord 1m", 0)
	itemB := createItem(t, db, "Patch cord 3m", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: itemA.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}
	if _, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: itemA.ID, Type: models.TransactionOut, Quantity: 7,
	}); err != nil {
		t.Fatalf("saída falhou: %v", err)
	}

	// Mover o in(10) para B deixaria A com saldo final -7: rejeitado.
	_, err = UpdateTransaction(db, txn.ID, UpdateTransactionInput{ItemID: &itemB.ID})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, esperado ErrInsufficientStock", err)
	}

	if got := itemQuantity(t, db, itemA.ID); got != 3 {
		t.Errorf("item A: quantity = %d, esperado 3 (rollback)", got)
	}
	if got := itemQuantity(t, db, itemB.ID); got != 0 {
		t.Errorf("item B: quantity = %d, esperado 0 (rollback)", got)
	}
}

func TestUpdateTypeFlipRejectedWhenBalanceWouldGoNegative(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Splitter", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}

	// Virar a única entrada em saída deixaria o saldo em -10: rejeitado.
	out := models.TransactionOut
	_, err = UpdateTransaction(db, txn.ID, UpdateTransactionInput{Type: &out})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, esperado ErrInsufficientStock", err)
	}

	// Rollback completo: saldo e transação intactos
	if got := itemQuantity(t, db, item.ID); got != 10 {
		t.Errorf("quantity = %d, esperado 10", got)
	}
	var reloaded models.InventoryTransaction
	if err := db.First(&reloaded, "id = ?", txn.ID).Error; err != nil {
		t.Fatalf("transação sumiu: %v", err)
	}
	if reloaded.Type != models.TransactionIn || reloaded.Quantity != 10 {
		t.Errorf("transação alterada: type=%s qty=%d", reloaded.Type, reloaded.Quantity)
	}
}

func TestUpdateTypeFlipAllowedWhenBalanceStaysNonNegative(t *testing.T) {
	db := newTestDB(t)
	// Saldo inicial 20 fora do razão (estoque de abertura)
	item := createItem(t, db, "Cabo UTP", 20)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}
	if got := itemQuantity(t, db, item.ID); got != 30 {
		t.Fatalf("quantity = %d, esperado 30", got)
	}

	// Estorno do in(10): 30-10=20; aplicação do out(10): 20-10=10.
	out := models.TransactionOut
	if _, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{Type: &out}); err != nil {
		t.Fatalf("flip falhou: %v", err)
	}

	if got := itemQuantity(t, db, item.ID); got != 10 {
		t.Errorf("quantity = %d, esperado 10", got)
	}
}

func TestDeleteReversesEffect(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Fonte 12V", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: item.ID, Type: models.TransactionIn, Quantity: 7,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}

	if err := DeleteTransaction(db, txn.ID); err != nil {
		t.Fatalf("delete falhou: %v", err)
	}

	if got := itemQuantity(t, db, item.ID); got != 0 {
		t.Errorf("quantity = %d, esperado 0", got)
	}
	var count int64
	db.Model(&models.InventoryTransaction{}).Where("id = ?", txn.ID).Count(&count)
	if count != 0 {
		t.Errorf("transação ainda existe")
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	db := newTestDB(t)

	if err := DeleteTransaction(db, 42); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("err = %v, esperado ErrTransactionNotFound", err)
	}
}

func TestUpdateMovesTransactionAcrossItems(t *testing.T) {
	db := newTestDB(t)
	itemA := createItem(t, db, "ONU modelo A", 0)
	itemB := createItem(t, db, "ONU modelo B", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: itemA.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}

	if _, err := UpdateTransaction(db, txn.ID, UpdateTransactionInput{ItemID: &itemB.ID}); err != nil {
		t.Fatalf("mover entre itens falhou: %v", err)
	}

	if got := itemQuantity(t, db, itemA.ID); got != 0 {
		t.Errorf("item A: quantity = %d, esperado 0", got)
	}
	if got := itemQuantity(t, db, itemB.ID); got != 10 {
		t.Errorf("item B: quantity = %d, esperado 10", got)
	}

	// Invariante vale para os dois itens independentemente
	for _, item := range []*models.InventoryItem{itemA, itemB} {
		balance, err := LedgerBalance(db, item.ID)
		if err != nil {
			t.Fatalf("LedgerBalance: %v", err)
		}
		if got := itemQuantity(t, db, item.ID); got != balance {
			t.Errorf("item %d: cache=%d razão=%d", item.ID, got, balance)
		}
	}
}

func TestUpdateFailureMidSequenceRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	itemA := createItem(t, db, "Mídia conversora", 0)
	itemB := createItem(t, db, "Switch 8p", 0)

	txn, err := CreateTransaction(db, CreateTransactionInput{
		ItemID: itemA.ID, Type: models.TransactionIn, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("entrada falhou: %v", err)
	}

	// O save da transação e o estorno em A passariam; a aplicação em B
	// falha porque B não tem saldo para um out(10). Nada pode persistir.
	out := models.TransactionOut
	_, err = UpdateTransaction(db, txn.ID, UpdateTransactionInput{ItemID: &itemB.ID, Type: &out})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, esperado ErrInsufficientStock", err)
	}

	if got := itemQuantity(t, db, itemA.ID); got != 10 {
		t.Errorf("item A: quantity = %d, esperado 10 (rollback)", got)
	}
	if got := itemQuantity(t, db, itemB.ID); got != 0 {
		t.Errorf("item B: quantity = %d, esperado 0 (rollback)", got)
	}

	var reloaded models.InventoryTransaction
	if err := db.First(&reloaded, "id = ?", txn.ID).Error; err != nil {
		t.Fatalf("transação sumiu: %v", err)
	}
	if reloaded.ItemID != itemA.ID || reloaded.Type != models.TransactionIn || reloaded.Quantity != 10 {
		t.Errorf("transação alterada após rollback: item=%d type=%s qty=%d",
			reloaded.ItemID, reloaded.Type, reloaded.Quantity)
	}
}

func TestInvariantHoldsAfterMixedSequence(t *testing.T) {
	db := newTestDB(t)
	item := createItem(t, db, "Patch cord", 0)

	t1, err := CreateTransaction(db, CreateTransactionInput{ItemID: item.ID, Type: models.TransactionIn, Quantity: 50})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateTransaction(db, CreateTransactionInput{ItemID: item.ID, Type: models.TransactionOut, Quantity: 8}); err != nil {
		t.Fatal(err)
	}
	t3, err := CreateTransaction(db, CreateTransactionInput{ItemID: item.ID, Type: models.TransactionIn, Quantity: 20})
	if err != nil {
		t.Fatal(err)
	}

	newQty := 30
	if _, err := UpdateTransaction(db, t1.ID, UpdateTransactionInput{Quantity: &newQty}); err != nil {
		t.Fatal(err)
	}
	if err := DeleteTransaction(db, t3.ID); err != nil {
		t.Fatal(err)
	}

	// 30 - 8 = 22
	balance, err := LedgerBalance(db, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := itemQuantity(t, db, item.ID)
	if got != balance || got != 22 {
		t.Errorf("cache=%d razão=%d, esperado 22/22", got, balance)
	}
}
