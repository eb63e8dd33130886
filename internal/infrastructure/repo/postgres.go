package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"sweetshop-backend/internal/domain"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

func (r *PostgresRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS sweets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL,
		quantity250g INT NOT NULL DEFAULT 0,
		quantity500g INT NOT NULL DEFAULT 0,
		quantity1kg INT NOT NULL DEFAULT 0,
		quantity_sold INT NOT NULL DEFAULT 0,
		description TEXT,
		photos TEXT,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT,
		user_email TEXT,
		user_phone TEXT,
		items TEXT,
		total_amount NUMERIC(12,2),
		shipping_address TEXT,
		payment_method TEXT,
		payment_status TEXT,
		notes TEXT,
		status TEXT,
		stock_deducted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		order_id TEXT,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS notifications_user_id_idx ON notifications (user_id);`)
	return err
}

// stockColumn maps a tier to its counter column. Only these three names are
// ever interpolated into SQL.
func stockColumn(t domain.SizeTier) (string, bool) {
	switch t {
	case domain.Size250g:
		return "quantity250g", true
	case domain.Size500g:
		return "quantity500g", true
	case domain.Size1kg:
		return "quantity1kg", true
	}
	return "", false
}

const sweetColumns = `id,name,price,quantity250g,quantity500g,quantity1kg,quantity_sold,description,photos,created_at,updated_at`

func (r *PostgresRepo) PutSweet(ctx context.Context, s *domain.Sweet) error {
	photos, _ := json.Marshal(s.Photos)
	_, err := r.db.ExecContext(ctx, `INSERT INTO sweets (`+sweetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET name=$2,price=$3,description=$8,photos=$9,updated_at=$11`,
		s.ID, s.Name, s.Price, s.Qty250g, s.Qty500g, s.Qty1kg, s.QuantitySold, s.Description, string(photos), s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PostgresRepo) ReplaceSweet(ctx context.Context, s *domain.Sweet) error {
	photos, _ := json.Marshal(s.Photos)
	_, err := r.db.ExecContext(ctx, `INSERT INTO sweets (`+sweetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET name=$2,price=$3,quantity250g=$4,quantity500g=$5,quantity1kg=$6,
			description=$8,photos=$9,updated_at=$11`,
		s.ID, s.Name, s.Price, s.Qty250g, s.Qty500g, s.Qty1kg, s.QuantitySold, s.Description, string(photos), s.CreatedAt, s.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweet(row rowScanner) (*domain.Sweet, error) {
	var s domain.Sweet
	var desc, photos sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.Price, &s.Qty250g, &s.Qty500g, &s.Qty1kg, &s.QuantitySold, &desc, &photos, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Description = desc.String
	_ = json.Unmarshal([]byte(photos.String), &s.Photos)
	if s.Photos == nil {
		s.Photos = []string{}
	}
	return &s, nil
}

func (r *PostgresRepo) GetSweet(ctx context.Context, id string) (*domain.Sweet, bool, error) {
	s, err := scanSweet(r.db.QueryRowContext(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (r *PostgresRepo) ListSweets(ctx context.Context) ([]domain.Sweet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Sweet{}
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteSweet(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sweets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepo) SetStock(ctx context.Context, id string, stock domain.Stock) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sweets SET quantity250g=$2,quantity500g=$3,quantity1kg=$4,updated_at=now() WHERE id=$1`,
		id, stock.Qty250g, stock.Qty500g, stock.Qty1kg)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AdjustStock runs the batch in one transaction. Each decrement is a
// conditional update, so a counter never drops below zero and a refused
// item rolls back the ones before it.
func (r *PostgresRepo) AdjustStock(ctx context.Context, adjs []domain.StockAdjustment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, a := range adjs {
		col, ok := stockColumn(a.Size)
		if !ok {
			return fmt.Errorf("invalid size tier %q", a.Size)
		}
		res, err := tx.ExecContext(ctx, `UPDATE sweets SET `+col+`=`+col+`+$2::int, quantity_sold=quantity_sold-$2::int, updated_at=now()
			WHERE id=$1 AND ($2::int >= 0 OR `+col+`+$2::int >= 0)`, a.SweetID, a.Delta)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sweets WHERE id=$1)`, a.SweetID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("sweet %s: %w", a.SweetID, domain.ErrUnknownSweet)
			}
			return fmt.Errorf("%w: sweet %s size %s", domain.ErrInsufficientStock, a.SweetID, a.Size)
		}
	}
	return tx.Commit()
}

func (r *PostgresRepo) AvailableStock(ctx context.Context, sweetID string, size domain.SizeTier) (int, bool, error) {
	col, ok := stockColumn(size)
	if !ok {
		return 0, false, fmt.Errorf("invalid size tier %q", size)
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT `+col+` FROM sweets WHERE id=$1`, sweetID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

const orderColumns = `id,user_id,user_name,user_email,user_phone,items,total_amount,shipping_address,payment_method,payment_status,notes,status,stock_deducted,created_at,updated_at`

func (r *PostgresRepo) PutOrder(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET user_id=$2,user_name=$3,user_email=$4,user_phone=$5,items=$6,total_amount=$7,
			shipping_address=$8,payment_method=$9,payment_status=$10,notes=$11,status=$12,stock_deducted=$13,updated_at=$15`,
		o.ID, o.User.ID, o.User.Name, o.User.Email, o.User.Phone, string(items), o.TotalAmount, o.ShippingAddress,
		string(o.PaymentMethod), string(o.PaymentStatus), o.Notes, string(o.Status), o.StockDeducted, o.CreatedAt, o.UpdatedAt)
	return err
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var name, email, phone, items, addr, notes sql.NullString
	if err := row.Scan(&o.ID, &o.User.ID, &name, &email, &phone, &items, &o.TotalAmount, &addr,
		(*string)(&o.PaymentMethod), (*string)(&o.PaymentStatus), &notes, (*string)(&o.Status), &o.StockDeducted, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.User.Name, o.User.Email, o.User.Phone = name.String, email.String, phone.String
	o.ShippingAddress, o.Notes = addr.String, notes.String
	if err := json.Unmarshal([]byte(items.String), &o.Items); err != nil && items.Valid {
		return nil, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	return &o, nil
}

func (r *PostgresRepo) GetOrder(ctx context.Context, id string) (*domain.Order, bool, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (r *PostgresRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresRepo) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepo) SearchOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := arg("%" + escapeLike(q) + "%")
		cond := "(user_name ILIKE " + like + " OR user_phone ILIKE " + like
		if domain.IsObjectID(q) {
			cond += " OR id = " + arg(domain.NormalizeID(q))
		}
		where = append(where, cond+")")
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.From != nil {
		where = append(where, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= "+arg(*f.To))
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return r.queryOrders(ctx, q+" ORDER BY created_at DESC", args...)
}

func (r *PostgresRepo) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepo) PutNotification(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications (id,user_id,message,type,order_id,read,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET read=$6`,
		n.ID, n.UserID, n.Message, string(n.Type), n.OrderID, n.Read, n.CreatedAt)
	return err
}

const notificationColumns = `id,user_id,message,type,order_id,read,created_at`

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var orderID sql.NullString
	if err := row.Scan(&n.ID, &n.UserID, &n.Message, (*string)(&n.Type), &orderID, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.OrderID = orderID.String
	return &n, nil
}

func (r *PostgresRepo) GetNotification(ctx context.Context, id string) (*domain.Notification, bool, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

func (r *PostgresRepo) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT NULLIF($2::int, 0)`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE user_id=$1 AND read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PostgresRepo) DeleteNotification(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
