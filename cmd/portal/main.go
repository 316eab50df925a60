package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"healthoasis/config"
	"healthoasis/internal/client"
	"healthoasis/internal/wallet"
	"healthoasis/internal/ws"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	cfg *config.Config
	api *client.Client
	log *logrus.Logger
}

func main() {
	a := &app{log: logrus.New()}
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:           "portal",
		Short:         "HealthOasis patient portal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
			a.api = client.New(a.cfg.Portal.APIBaseURL, nil)
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(catalogCmds(a)...)
	root.AddCommand(bookCmd(a), messageCmd(a), walletCmd(a), inviteCmd(a), notifyCmd(a), listenCmd(a), callCmd(a))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func catalogCmds(a *app) []*cobra.Command {
	list := func(use, short string, fetch func(ctx context.Context) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := fetch(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(v)
			},
		}
	}
	return []*cobra.Command{
		list("departments", "List departments", func(ctx context.Context) (any, error) { return a.api.Departments(ctx) }),
		list("doctors", "List doctors", func(ctx context.Context) (any, error) { return a.api.Doctors(ctx) }),
		list("hours", "Show working hours", func(ctx context.Context) (any, error) { return a.api.WorkingHours(ctx) }),
		list("contact", "Show contact information", func(ctx context.Context) (any, error) { return a.api.ContactInfo(ctx) }),
		{
			Use:   "doctor <id>",
			Short: "Show one doctor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				d, err := a.api.Doctor(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(d)
			},
		},
	}
}

func bookCmd(a *app) *cobra.Command {
	var in client.Appointment
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.BookAppointment(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Println("Appointment requested.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "Date (YYYY-MM-DD)")
	f.StringVar(&in.Time, "time", "", "Time (HH:MM:SS)")
	f.StringVar(&in.FullName, "name", "", "Full name")
	f.StringVar(&in.Email, "email", "", "Email address")
	f.StringVar(&in.Phone, "phone", "", "Phone number")
	f.StringVar(&in.Department, "department", "", "Department name or slug")
	f.StringVar(&in.Message, "message", "", "Optional note")
	for _, name := range []string{"date", "time", "name", "email", "phone", "department"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func messageCmd(a *app) *cobra.Command {
	var in client.Message
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send a message to the hospital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.SendMessage(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Println("Message sent.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.FullName, "name", "", "Full name")
	f.StringVar(&in.Email, "email", "", "Email address")
	f.StringVar(&in.Subject, "subject", "", "Subject")
	f.StringVar(&in.Text, "text", "", "Message")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func (a *app) walletStore() (*wallet.Store, error) {
	session, err := wallet.NewFileSession(a.cfg.Portal.SessionFile)
	if err != nil {
		return nil, err
	}
	return wallet.NewStore(a.api, session, a.cfg.Portal.WithdrawDelay, a.log), nil
}

func printWallet(st wallet.State) error {
	return printJSON(map[string]any{
		"email":        st.Email,
		"balance":      st.Balance.StringFixed(2),
		"transactions": st.Transactions,
	})
}

func walletCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "wallet", Short: "Patient wallet"}

	cmd.AddCommand(&cobra.Command{
		Use:   "login <email>",
		Short: "Open a wallet and remember the email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.walletStore()
			if err != nil {
				return err
			}
			if err := store.Login(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printWallet(store.State())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the remembered wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.walletStore()
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			st := store.State()
			if st.EmailModalOpen {
				return fmt.Errorf("no wallet open: run 'portal wallet login <email>'")
			}
			return printWallet(st)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "withdraw <amount> <account-details>",
		Short: "Request a withdrawal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return wallet.ErrInvalidAmount
			}
			store, err := a.walletStore()
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			if !store.State().IsAuthenticated {
				return fmt.Errorf("no wallet open: run 'portal wallet login <email>'")
			}
			tx, err := store.WithdrawMoney(cmd.Context(), amount, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Withdrawn %s from your wallet (%s).\n", tx.Amount.StringFixed(2), tx.ID)
			return printWallet(store.State())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "topup <amount>",
		Short: "Start a hosted checkout for a top-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil || !amount.IsPositive() {
				return wallet.ErrInvalidAmount
			}
			store, err := a.walletStore()
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			st := store.State()
			if !st.IsAuthenticated {
				return fmt.Errorf("no wallet open: run 'portal wallet login <email>'")
			}
			sess, err := a.api.CreateCheckoutSession(cmd.Context(), st.Email, amount.Shift(2).IntPart())
			if err != nil {
				return err
			}
			fmt.Println("Complete the payment at:", sess.URL)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.walletStore()
			if err != nil {
				return err
			}
			return store.Logout()
		},
	})
	return cmd
}

func inviteCmd(a *app) *cobra.Command {
	var doctorEmail, patient, patientID string
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Email a doctor a video call invitation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := a.api.InviteDoctor(cmd.Context(), doctorEmail, patient, patientID)
			if err != nil {
				return err
			}
			fmt.Println("Invitation sent. Room:", room)
			return nil
		},
	}
	cmd.Flags().StringVar(&doctorEmail, "doctor-email", "", "Doctor's email")
	cmd.Flags().StringVar(&patient, "patient", "", "Patient name")
	cmd.Flags().StringVar(&patientID, "patient-id", "", "Patient reference")
	_ = cmd.MarkFlagRequired("doctor-email")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func notifyCmd(a *app) *cobra.Command {
	var patient, room string
	cmd := &cobra.Command{
		Use:   "notify-doctor <doctor-id>",
		Short: "Tell a doctor a patient is waiting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.NotifyDoctor(cmd.Context(), id, patient, room); err != nil {
				return err
			}
			fmt.Println("Doctor notified.")
			return nil
		},
	}
	cmd.Flags().StringVar(&patient, "patient", "", "Patient name")
	cmd.Flags().StringVar(&room, "room", "", "Room id (defaults to the doctor's room)")
	return cmd
}

// listenCmd joins a doctor's signaling room as the doctor and prints the
// traffic, which is enough to see a patient's call attempt arrive.
func listenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen <doctor-id>",
		Short: "Join a doctor's signaling room and print events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sig, err := client.DialSignaling(ctx, a.cfg.Portal.SocketURL, a.log)
			if err != nil {
				return err
			}
			defer sig.Close()

			dropped := make(chan struct{})
			for _, ev := range []string{ws.EventCallOffer, ws.EventCallAnswer, ws.EventICECandidate, ws.EventCallEnded, ws.EventUserJoined, ws.EventSignal, ws.EventError} {
				ev := ev
				sig.On(ev, func(data json.RawMessage) {
					a.log.WithField("event", ev).Info(string(data))
				})
			}
			sig.On(client.EventDisconnect, func(json.RawMessage) { close(dropped) })

			if err := sig.Emit(ws.EventJoinDoctorRoom, map[string]any{"doctorId": id, "role": "doctor"}); err != nil {
				return err
			}
			a.log.WithField("room", ws.DoctorRoom(id)).Info("listening, press Ctrl+C to stop")

			select {
			case <-ctx.Done():
				return nil
			case <-dropped:
				return fmt.Errorf("signaling connection lost")
			}
		},
	}
}
